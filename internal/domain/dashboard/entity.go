package dashboard

import "time"

// Date columns a site_transactions table may carry, in probe order.
var TxnDateColumnCandidates = []string{"entry_date", "txn_date", "date"}

// TxnDateColumnFallback is used when none of the candidates is queryable.
const TxnDateColumnFallback = "created_at"

// IsKnownDateColumn reports whether col is a candidate or the fallback column.
func IsKnownDateColumn(col string) bool {
	if col == TxnDateColumnFallback {
		return true
	}
	for _, c := range TxnDateColumnCandidates {
		if c == col {
			return true
		}
	}
	return false
}

// Transaction sources with their own KPI.
const (
	SourceFuel        = "FUEL"
	SourceVehicleRent = "VEHICLE_RENT"
	SourceLabour      = "LABOUR"
)

// Ledger type names counted for the headcount KPIs.
const (
	LedgerTypeStaff      = "STAFF"
	LedgerTypeSupervisor = "SUPERVISOR"
)

// Field aliases for transaction and site rows whose column names vary by deployment.
var (
	SiteNameFields = []string{"name", "site_name", "siteName", "title", "site_title", "siteTitle", "site"}
	RefNoFields    = []string{"ref_no", "refNo", "reference_no", "voucher_no", "bill_no"}
	PartyFields    = []string{"party", "party_name", "partyName", "vendor_name", "supplier_name", "contractor_name"}
	RemarkFields   = []string{"remark", "remarks", "note", "notes", "description"}
)

// DateRange is an inclusive window from the start of From's day to the end of To's day.
type DateRange struct {
	From time.Time
	To   time.Time
}

// TxnQuery scopes a transaction query to a site, a window and the resolved date column.
type TxnQuery struct {
	SiteID     string
	DateColumn string
	Range      DateRange
}

// TrendRow is one day's credit and debit totals.
type TrendRow struct {
	Day     time.Time
	Inflow  float64
	Outflow float64
}

// SourceAmount is a debit total for one transaction source.
type SourceAmount struct {
	Source string
	Amount float64
}
