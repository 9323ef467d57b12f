package dashboard

import "context"

// DashboardRepository defines the interface for dashboard data access.
// Amount filters take the nature values to match; an empty list matches nothing.
type DashboardRepository interface {
	// GetSiteRecord returns the site row as column name -> value, or ErrSiteNotFound
	GetSiteRecord(ctx context.Context, siteID string) (map[string]any, error)

	// DetectTxnDateColumn returns the first queryable candidate column, or fallback
	DetectTxnDateColumn(ctx context.Context, candidates []string, fallback string) string

	SumByNature(ctx context.Context, q TxnQuery, natures []string) (float64, error)

	SumBySource(ctx context.Context, q TxnQuery, natures []string, source string) (float64, error)

	// SumGroupedBySource returns totals per source, largest first
	SumGroupedBySource(ctx context.Context, q TxnQuery, natures []string) ([]SourceAmount, error)

	// DailyTrend returns per-day credit/debit totals ordered by day ascending
	DailyTrend(ctx context.Context, q TxnQuery, credit, debit []string) ([]TrendRow, error)

	// CountLedgersByType counts ledgers whose type name matches case-insensitively
	CountLedgersByType(ctx context.Context, typeName string) (int64, error)

	// ListRecentTransactions returns the newest rows in the window as column maps
	ListRecentTransactions(ctx context.Context, q TxnQuery, limit int) ([]map[string]any, error)
}
