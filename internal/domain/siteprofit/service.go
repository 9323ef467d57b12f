package siteprofit

import (
	"context"
	"io"
)

// SiteProfitService computes the per-site profit/loss view over all sites.
type SiteProfitService interface {
	// ComputeSiteProfit returns one row per site, newest site first
	ComputeSiteProfit(ctx context.Context) (*SiteProfitResponse, error)

	// ExportSiteProfit writes the same rows as an xlsx workbook
	ExportSiteProfit(ctx context.Context, w io.Writer) error
}
