package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/database"
)

// pgInvalidTextRepresentation is raised when a site ID is not a valid UUID.
const pgInvalidTextRepresentation = "22P02"

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// dateColumn returns the quoted date column of q. Only known columns are ever interpolated.
func dateColumn(q dashboard.TxnQuery) (string, error) {
	if !dashboard.IsKnownDateColumn(q.DateColumn) {
		return "", fmt.Errorf("unknown transaction date column %q", q.DateColumn)
	}
	return pgx.Identifier{q.DateColumn}.Sanitize(), nil
}

// GetSiteRecord returns the full site row so callers can pick the name column the deployment uses
func (r *dashboardRepositoryImpl) GetSiteRecord(ctx context.Context, siteID string) (map[string]any, error) {
	if _, err := uuid.Parse(siteID); err != nil {
		return nil, dashboard.ErrSiteNotFound
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT * FROM sites WHERE id = $1 LIMIT 1`, siteID)
	if err != nil {
		return nil, mapSiteLookupError(err)
	}

	record, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapSiteLookupError(err)
	}
	return record, nil
}

func mapSiteLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return dashboard.ErrSiteNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation {
		return dashboard.ErrSiteNotFound
	}
	return fmt.Errorf("failed to get site: %w", err)
}

// SumByNature sums amount over the window for the given nature values.
// Natures are compared as text so values missing from the enum match nothing instead of failing.
func (r *dashboardRepositoryImpl) SumByNature(ctx context.Context, tq dashboard.TxnQuery, natures []string) (float64, error) {
	if len(natures) == 0 {
		return 0, nil
	}
	col, err := dateColumn(tq)
	if err != nil {
		return 0, err
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(amount), 0)::float8
		FROM site_transactions
		WHERE site_id = $1
		AND %[1]s >= $2 AND %[1]s <= $3
		AND nature::text = ANY($4)
	`, col)

	var total float64
	if err := q.QueryRow(ctx, query, tq.SiteID, tq.Range.From, tq.Range.To, natures).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transactions by nature: %w", err)
	}
	return total, nil
}

func (r *dashboardRepositoryImpl) SumBySource(ctx context.Context, tq dashboard.TxnQuery, natures []string, source string) (float64, error) {
	if len(natures) == 0 {
		return 0, nil
	}
	col, err := dateColumn(tq)
	if err != nil {
		return 0, err
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(amount), 0)::float8
		FROM site_transactions
		WHERE site_id = $1
		AND %[1]s >= $2 AND %[1]s <= $3
		AND nature::text = ANY($4)
		AND source::text = $5
	`, col)

	var total float64
	if err := q.QueryRow(ctx, query, tq.SiteID, tq.Range.From, tq.Range.To, natures, source).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transactions for source %s: %w", source, err)
	}
	return total, nil
}

// SumGroupedBySource returns debit totals per source, largest first. Rows without a source are labelled UNSPECIFIED.
func (r *dashboardRepositoryImpl) SumGroupedBySource(ctx context.Context, tq dashboard.TxnQuery, natures []string) ([]dashboard.SourceAmount, error) {
	if len(natures) == 0 {
		return []dashboard.SourceAmount{}, nil
	}
	col, err := dateColumn(tq)
	if err != nil {
		return nil, err
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT COALESCE(source::text, 'UNSPECIFIED') AS label, COALESCE(SUM(amount), 0)::float8 AS total
		FROM site_transactions
		WHERE site_id = $1
		AND %[1]s >= $2 AND %[1]s <= $3
		AND nature::text = ANY($4)
		GROUP BY label
		ORDER BY total DESC, label
	`, col)

	rows, err := q.Query(ctx, query, tq.SiteID, tq.Range.From, tq.Range.To, natures)
	if err != nil {
		return nil, fmt.Errorf("failed to group transactions by source: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dashboard.SourceAmount, error) {
		var s dashboard.SourceAmount
		err := row.Scan(&s.Source, &s.Amount)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan source totals: %w", err)
	}
	return result, nil
}

// DailyTrend returns credit and debit totals per calendar day in ascending order
func (r *dashboardRepositoryImpl) DailyTrend(ctx context.Context, tq dashboard.TxnQuery, credit, debit []string) ([]dashboard.TrendRow, error) {
	col, err := dateColumn(tq)
	if err != nil {
		return nil, err
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT
			date_trunc('day', %[1]s)::date AS day,
			COALESCE(SUM(CASE WHEN nature::text = ANY($4) THEN amount ELSE 0 END), 0)::float8 AS inflow,
			COALESCE(SUM(CASE WHEN nature::text = ANY($5) THEN amount ELSE 0 END), 0)::float8 AS outflow
		FROM site_transactions
		WHERE site_id = $1
		AND %[1]s >= $2 AND %[1]s <= $3
		GROUP BY day
		ORDER BY day
	`, col)

	if credit == nil {
		credit = []string{}
	}
	if debit == nil {
		debit = []string{}
	}

	rows, err := q.Query(ctx, query, tq.SiteID, tq.Range.From, tq.Range.To, credit, debit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily trend: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dashboard.TrendRow, error) {
		var t dashboard.TrendRow
		err := row.Scan(&t.Day, &t.Inflow, &t.Outflow)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily trend: %w", err)
	}
	return result, nil
}

// CountLedgersByType counts ledgers across all sites; a missing ledger type counts 0
func (r *dashboardRepositoryImpl) CountLedgersByType(ctx context.Context, typeName string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM ledgers l
		JOIN ledger_types lt ON lt.id = l.ledger_type_id
		WHERE UPPER(lt.name) = UPPER($1)
	`

	var count int64
	if err := q.QueryRow(ctx, query, typeName).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s ledgers: %w", typeName, err)
	}
	return count, nil
}

// ListRecentTransactions returns whole rows since ref/party/remark columns differ between deployments
func (r *dashboardRepositoryImpl) ListRecentTransactions(ctx context.Context, tq dashboard.TxnQuery, limit int) ([]map[string]any, error) {
	col, err := dateColumn(tq)
	if err != nil {
		return nil, err
	}
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT *
		FROM site_transactions
		WHERE site_id = $1
		AND %[1]s >= $2 AND %[1]s <= $3
		ORDER BY %[1]s DESC, created_at DESC
		LIMIT $4
	`, col)

	rows, err := q.Query(ctx, query, tq.SiteID, tq.Range.From, tq.Range.To, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}

	result, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent transactions: %w", err)
	}
	return result, nil
}
