package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetSummary returns the time-windowed summary of one site
	GetSummary(ctx context.Context, req SummaryRequest) (*DashboardSummary, error)
}
