package siteprofit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Site is a construction or maintenance site joined with its department name.
type Site struct {
	ID         string
	SiteName   string
	Department *string
	Status     string
	CreatedAt  time.Time
}

// MaterialLedgerRow is one material supplier ledger entry. TotalAmt is null on older rows.
type MaterialLedgerRow struct {
	SiteID   string
	Qty      decimal.Decimal
	Rate     decimal.Decimal
	TotalAmt decimal.NullDecimal
}

// Cost returns TotalAmt when recorded, otherwise Qty * Rate.
func (r MaterialLedgerRow) Cost() decimal.Decimal {
	if r.TotalAmt.Valid {
		return r.TotalAmt.Decimal
	}
	return r.Qty.Mul(r.Rate)
}

// StaffOutRow is a staff expense out-amount that has not been mirrored into site_expenses.
type StaffOutRow struct {
	SiteID    string
	OutAmount decimal.Decimal
}

// SiteSums maps a site ID to a summed amount. A missing key means zero.
type SiteSums map[string]float64

// Get returns the sum for siteID, or 0.
func (s SiteSums) Get(siteID string) float64 {
	if s == nil {
		return 0
	}
	return s[siteID]
}

// LedgerSums holds every per-site sum that feeds a profit row.
type LedgerSums struct {
	ManualExpense      SiteSums
	StaffOutUnmirrored SiteSums
	MaterialCost       SiteSums
	LabourCost         SiteSums
	VehicleRentCost    SiteSums
	Receipts           SiteSums
	Vouchers           SiteSums
	StaffIn            SiteSums
}
