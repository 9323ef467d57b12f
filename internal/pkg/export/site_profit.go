package export

import (
	"fmt"
	"io"

	"github.com/sitebooks/sitebooks-backend/internal/domain/siteprofit"
	"github.com/xuri/excelize/v2"
)

const SiteProfitSheet = "Site Profit"

var siteProfitHeader = []interface{}{
	"Site", "Department", "Status", "Amount Received", "Expenses", "Profit",
	"Manual Site Expense", "Staff Out (Unmirrored)", "Material Purchase", "Labour Contractor", "Vehicle Rent",
	"Site Receipt", "Voucher Received", "Staff In",
}

// WriteSiteProfitXLSX writes rows to a single-sheet workbook, one row per site after the header.
func WriteSiteProfitXLSX(w io.Writer, rows []siteprofit.SiteProfitRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SiteProfitSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(SiteProfitSheet, "A1", &siteProfitHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		department := ""
		if row.Department != nil {
			department = *row.Department
		}
		values := []interface{}{
			row.SiteName, department, row.Status,
			row.AmountReceived, row.Expenses, row.Profit,
			row.Breakup.ManualSiteExpense, row.Breakup.StaffOutUnmirrored, row.Breakup.MaterialPurchaseCost,
			row.Breakup.LabourContractorCost, row.Breakup.VehicleRentCost,
			row.Breakup.SiteReceipt, row.Breakup.VoucherReceived, row.Breakup.StaffIn,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SiteProfitSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	return f.Write(w)
}
