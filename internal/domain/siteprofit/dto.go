package siteprofit

// Breakup lists every cost and income component of a profit row so each total can be re-derived.
type Breakup struct {
	ManualSiteExpense    float64 `json:"manualSiteExpense"`
	StaffOutUnmirrored   float64 `json:"staffOutUnmirrored"`
	MaterialPurchaseCost float64 `json:"materialPurchaseCost"`
	LabourContractorCost float64 `json:"labourContractorCost"`
	VehicleRentCost      float64 `json:"vehicleRentCost"`
	SiteReceipt          float64 `json:"siteReceipt"`
	VoucherReceived      float64 `json:"voucherReceived"`
	StaffIn              float64 `json:"staffIn"`
}

// SiteProfitRow is the profit/loss view of one site. Profit is negative for a loss.
type SiteProfitRow struct {
	SiteID         string  `json:"siteId"`
	Department     *string `json:"department"`
	SiteName       string  `json:"siteName"`
	Status         string  `json:"status"`
	AmountReceived float64 `json:"amountReceived"`
	Expenses       float64 `json:"expenses"`
	Profit         float64 `json:"profit"`
	Breakup        Breakup `json:"breakup"`
}

// SiteProfitResponse is the body of GET /site-profit.
type SiteProfitResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Data    []SiteProfitRow `json:"data"`
}
