package dashboard

import (
	"context"
	"time"
)

// DashboardRepository defines the aggregate queries behind the dashboard
type DashboardRepository interface {
	CountEmployees(ctx context.Context) (int64, error)

	// CountPresent counts records on date with a check-in
	CountPresent(ctx context.Context, date time.Time) (int64, error)

	// CountLate counts records on date with late minutes
	CountLate(ctx context.Context, date time.Time) (int64, error)

	// AverageWorkingHours averages completed days on or after since
	AverageWorkingHours(ctx context.Context, since time.Time) (float64, error)
}
