package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
)

// DetectTxnDateColumn tries a one-row read of each candidate column and returns the first that succeeds.
// Probes run on the pool, never on a caller's transaction, since a failed statement aborts it.
func (r *dashboardRepositoryImpl) DetectTxnDateColumn(ctx context.Context, candidates []string, fallback string) string {
	for _, col := range candidates {
		if !dashboard.IsKnownDateColumn(col) {
			continue
		}
		query := "SELECT " + pgx.Identifier{col}.Sanitize() + " FROM site_transactions LIMIT 1"
		rows, err := r.db.Pool.Query(ctx, query)
		if err != nil {
			continue
		}
		rows.Close()
		if rows.Err() == nil {
			return col
		}
	}
	return fallback
}
