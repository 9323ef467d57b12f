package siteprofit

import "context"

// SiteProfitRepository reads the ledgers that feed the site profit view.
// Every sum method is restricted to the given site IDs and returns one entry per site that has rows.
type SiteProfitRepository interface {
	// ListSites returns every site with its department name, newest first
	ListSites(ctx context.Context) ([]Site, error)

	SumSiteExpenses(ctx context.Context, siteIDs []string) (SiteSums, error)

	// ListMaterialLedgerRows returns raw rows since the qty*rate fallback is applied per row
	ListMaterialLedgerRows(ctx context.Context, siteIDs []string) ([]MaterialLedgerRow, error)

	// SumVehicleRentGenerated sums the generated (owed) amount, not the paid amount
	SumVehicleRentGenerated(ctx context.Context, siteIDs []string) (SiteSums, error)

	SumLabourPayments(ctx context.Context, siteIDs []string) (SiteSums, error)

	SumSiteReceipts(ctx context.Context, siteIDs []string) (SiteSums, error)

	SumVoucherCheques(ctx context.Context, siteIDs []string) (SiteSums, error)

	SumStaffIn(ctx context.Context, siteIDs []string) (SiteSums, error)

	// ListStaffOutUnmirrored returns out-amount rows with no linked site expense
	ListStaffOutUnmirrored(ctx context.Context, siteIDs []string) ([]StaffOutRow, error)
}
