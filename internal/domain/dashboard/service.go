package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetStats runs the dashboard queries concurrently
	GetStats(ctx context.Context) (DashboardStats, error)
}
