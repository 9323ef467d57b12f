package dashboard

// SummaryRequest holds the query parameters of GET /dashboard/summary.
type SummaryRequest struct {
	SiteID string `query:"siteId" validate:"required"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

type SiteRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RangeRef is the resolved window as YYYY-MM-DD dates.
type RangeRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type KPIs struct {
	Inflow            float64 `json:"inflow"`
	Outflow           float64 `json:"outflow"`
	Profit            float64 `json:"profit"`
	StaffCount        int64   `json:"staffCount"`
	SupervisorCount   int64   `json:"supervisorCount"`
	DieselQty         float64 `json:"dieselQty"` // no fuel quantity source is joined yet
	DieselAmount      float64 `json:"dieselAmount"`
	VehicleRentAmount float64 `json:"vehicleRentAmount"`
	LabourAmount      float64 `json:"labourAmount"`
}

type TrendPoint struct {
	Date    string  `json:"date"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Profit  float64 `json:"profit"`
}

type CostBreakdownItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type RecentTransaction struct {
	Date   string  `json:"date"`
	Source string  `json:"source"`
	RefNo  *string `json:"refNo,omitempty"`
	Party  *string `json:"party,omitempty"`
	Amount float64 `json:"amount"`
	Remark *string `json:"remark,omitempty"`
}

// DashboardSummary is the single-site dashboard. Every field is always present;
// parts that could not be computed hold their zero value.
type DashboardSummary struct {
	Site               SiteRef             `json:"site"`
	Range              RangeRef            `json:"range"`
	KPIs               KPIs                `json:"kpis"`
	ProfitTrend        []TrendPoint        `json:"profitTrend"`
	CostBreakdown      []CostBreakdownItem `json:"costBreakdown"`
	VehicleFuelSummary []any               `json:"vehicleFuelSummary"`
	FuelStationSummary []any               `json:"fuelStationSummary"`
	ContractorSummary  []any               `json:"contractorSummary"`
	Recent             []RecentTransaction `json:"recent"`
}
