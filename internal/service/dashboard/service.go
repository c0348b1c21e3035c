package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"golang.org/x/sync/errgroup"
)

// averageWindow is how far back the working hours average looks.
const averageWindow = 7 * 24 * time.Hour

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	loc *time.Location
	now func() time.Time
}

func NewDashboardService(repo dashboard.DashboardRepository, loc *time.Location) dashboard.DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		loc:                 loc,
		now:                 time.Now,
	}
}

// GetStats returns today's overview. The four queries run in parallel.
func (s *DashboardServiceImpl) GetStats(ctx context.Context) (dashboard.DashboardStats, error) {
	now := s.now()
	today := attendance.WorkDate(now, s.loc)
	since := attendance.WorkDate(now.Add(-averageWindow), s.loc)

	var (
		total, present, late int64
		avgHours             float64
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		total, err = s.CountEmployees(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		present, err = s.CountPresent(gCtx, today)
		return err
	})

	g.Go(func() error {
		var err error
		late, err = s.CountLate(gCtx, today)
		return err
	})

	g.Go(func() error {
		var err error
		avgHours, err = s.AverageWorkingHours(gCtx, since)
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboard.DashboardStats{}, err
	}

	return dashboard.DashboardStats{
		TotalEmployees:      total,
		PresentToday:        present,
		LateToday:           late,
		AbsentToday:         max(0, total-present),
		AverageWorkingHours: math.Round(avgHours*100) / 100,
	}, nil
}
