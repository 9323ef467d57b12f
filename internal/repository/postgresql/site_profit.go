package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sitebooks/sitebooks-backend/internal/domain/siteprofit"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/database"
)

type siteProfitRepositoryImpl struct {
	db *database.DB
}

func NewSiteProfitRepository(db *database.DB) siteprofit.SiteProfitRepository {
	return &siteProfitRepositoryImpl{db: db}
}

// ListSites returns every site with its department name, newest first
func (r *siteProfitRepositoryImpl) ListSites(ctx context.Context) ([]siteprofit.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.site_name, d.name, s.status, s.created_at
		FROM sites s
		LEFT JOIN departments d ON d.id = s.department_id
		ORDER BY s.created_at DESC, s.id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	sites := []siteprofit.Site{}
	for rows.Next() {
		var s siteprofit.Site
		if err := rows.Scan(&s.ID, &s.SiteName, &s.Department, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sites: %w", err)
	}
	return sites, nil
}

// sumBySite runs a grouped "site_id, total" query and collects it into a map.
func (r *siteProfitRepositoryImpl) sumBySite(ctx context.Context, name, query string, siteIDs []string) (siteprofit.SiteSums, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, siteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum %s: %w", name, err)
	}

	sums := siteprofit.SiteSums{}
	var siteID string
	var total float64
	_, err = pgx.ForEachRow(rows, []any{&siteID, &total}, func() error {
		sums[siteID] = total
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sum %s: %w", name, err)
	}
	return sums, nil
}

func (r *siteProfitRepositoryImpl) SumSiteExpenses(ctx context.Context, siteIDs []string) (siteprofit.SiteSums, error) {
	query := `
		SELECT site_id, COALESCE(SUM(amount), 0)::float8
		FROM site_expenses
		WHERE site_id = ANY($1::uuid[])
		GROUP BY site_id
	`
	return r.sumBySite(ctx, "site expenses", query, siteIDs)
}

func (r *siteProfitRepositoryImpl) ListMaterialLedgerRows(ctx context.Context, siteIDs []string) ([]siteprofit.MaterialLedgerRow, error) {
	q := GetQuerier(ctx, r.db)

	// NaN totals are treated like missing ones
	query := `
		SELECT site_id, COALESCE(qty, 0), COALESCE(rate, 0), NULLIF(total_amt, 'NaN')
		FROM material_supplier_ledgers
		WHERE site_id = ANY($1::uuid[])
	`

	rows, err := q.Query(ctx, query, siteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list material ledger rows: %w", err)
	}
	defer rows.Close()

	var result []siteprofit.MaterialLedgerRow
	for rows.Next() {
		var m siteprofit.MaterialLedgerRow
		if err := rows.Scan(&m.SiteID, &m.Qty, &m.Rate, &m.TotalAmt); err != nil {
			return nil, fmt.Errorf("failed to scan material ledger row: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate material ledger rows: %w", err)
	}
	return result, nil
}

func (r *siteProfitRepositoryImpl) SumVehicleRentGenerated(ctx context.Context, siteIDs []string) (siteprofit.SiteSums, error) {
	query := `
		SELECT site_id, COALESCE(SUM(generated_amt), 0)::float8
		FROM vehicle_rent_logs
		WHERE site_id = ANY($1::uuid[])
		GROUP BY site_id
	`
	return r.sumBySite(ctx, "vehicle rent", query, siteIDs)
}

func (r *siteProfitRepositoryImpl) SumLabourPayments(ctx context.Context, siteIDs []string) (siteprofit.SiteSums, error) {
	query := `
		SELECT site_id, COALESCE(SUM(amount), 0)::float8
		FROM labour_payments
		WHERE site_id = ANY($1::uuid[])
		GROUP BY site_id
	`
	return r.sumBySite(ctx, "labour payments", query, siteIDs)
}

func (r *siteProfitRepositoryImpl) SumSiteReceipts(ctx context.Context, siteIDs []string) (siteprofit.SiteSums, error) {
	query := `
		SELECT site_id, COALESCE(SUM(amount), 0)::float8
		FROM site_receipts
		WHERE site_id = ANY($1::uuid[])
		GROUP BY site_id
	`
	return r.sumBySite(ctx, "site receipts", query, siteIDs)
}

func (r *siteProfitRepositoryImpl) SumVoucherCheques(ctx context.Context, siteIDs []string) (siteprofit.SiteSums, error) {
	query := `
		SELECT site_id, COALESCE(SUM(cheque_amt), 0)::float8
		FROM vouchers
		WHERE site_id = ANY($1::uuid[])
		GROUP BY site_id
	`
	return r.sumBySite(ctx, "vouchers", query, siteIDs)
}

func (r *siteProfitRepositoryImpl) SumStaffIn(ctx context.Context, siteIDs []string) (siteprofit.SiteSums, error) {
	query := `
		SELECT site_id, COALESCE(SUM(in_amount), 0)::float8
		FROM staff_expenses
		WHERE site_id = ANY($1::uuid[]) AND in_amount IS NOT NULL
		GROUP BY site_id
	`
	return r.sumBySite(ctx, "staff in", query, siteIDs)
}

// ListStaffOutUnmirrored skips out-amounts already copied into site_expenses
func (r *siteProfitRepositoryImpl) ListStaffOutUnmirrored(ctx context.Context, siteIDs []string) ([]siteprofit.StaffOutRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.site_id, s.out_amount
		FROM staff_expenses s
		WHERE s.site_id = ANY($1::uuid[])
		AND s.out_amount IS NOT NULL
		AND NOT EXISTS (
			SELECT 1 FROM site_expenses se WHERE se.staff_expense_id = s.id
		)
	`

	rows, err := q.Query(ctx, query, siteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff out expenses: %w", err)
	}
	defer rows.Close()

	var result []siteprofit.StaffOutRow
	for rows.Next() {
		var s siteprofit.StaffOutRow
		if err := rows.Scan(&s.SiteID, &s.OutAmount); err != nil {
			return nil, fmt.Errorf("failed to scan staff out expense: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staff out expenses: %w", err)
	}
	return result, nil
}
