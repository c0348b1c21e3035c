package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// CountEmployees implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountEmployees(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM employees`)
}

// CountPresent implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountPresent(ctx context.Context, date time.Time) (int64, error) {
	return r.count(ctx, `
		SELECT COUNT(*)
		FROM attendance_records
		WHERE date = $1 AND in_time IS NOT NULL
	`, date)
}

// CountLate implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountLate(ctx context.Context, date time.Time) (int64, error) {
	return r.count(ctx, `
		SELECT COUNT(*)
		FROM attendance_records
		WHERE date = $1 AND late_minutes > 0
	`, date)
}

// AverageWorkingHours implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) AverageWorkingHours(ctx context.Context, since time.Time) (float64, error) {
	q := GetQuerier(ctx, r.db)

	var avg float64
	err := q.QueryRow(ctx, `
		SELECT COALESCE(AVG(total_hours), 0)::float8
		FROM attendance_records
		WHERE date >= $1 AND total_hours > 0
	`, since).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average working hours: %w", err)
	}
	return avg, nil
}

func (r *dashboardRepositoryImpl) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to run dashboard count: %w", err)
	}
	return n, nil
}
