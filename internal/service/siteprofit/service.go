package siteprofit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitebooks/sitebooks-backend/internal/domain/siteprofit"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/cache"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/export"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

type SiteProfitServiceImpl struct {
	repo    siteprofit.SiteProfitRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewSiteProfitService(repo siteprofit.SiteProfitRepository, c *cache.Cache, m *metrics.Metrics, logger *slog.Logger) siteprofit.SiteProfitService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SiteProfitServiceImpl{
		repo:    repo,
		cache:   c,
		metrics: m,
		logger:  logger,
	}
}

// ComputeSiteProfit returns the profit/loss view of every site. Any query failure fails the whole call.
func (s *SiteProfitServiceImpl) ComputeSiteProfit(ctx context.Context) (*siteprofit.SiteProfitResponse, error) {
	key, err := s.cache.BuildKey(ctx, "site-profit")
	if err != nil {
		s.logger.WarnContext(ctx, "site profit cache unavailable", slog.String("error", err.Error()))
		return s.compute(ctx)
	}
	return cache.FetchJSON(ctx, s.cache, key, s.compute)
}

func (s *SiteProfitServiceImpl) compute(ctx context.Context) (*siteprofit.SiteProfitResponse, error) {
	defer s.metrics.ObserveAggregation("site_profit", time.Now())

	sites, err := s.repo.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", siteprofit.ErrSiteProfitUnavailable, err)
	}
	if len(sites) == 0 {
		return &siteprofit.SiteProfitResponse{Success: true, Count: 0, Data: []siteprofit.SiteProfitRow{}}, nil
	}

	siteIDs := make([]string, len(sites))
	for i, site := range sites {
		siteIDs[i] = site.ID
	}

	sums, err := s.loadLedgerSums(ctx, siteIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", siteprofit.ErrSiteProfitUnavailable, err)
	}

	rows := BuildRows(sites, sums)
	return &siteprofit.SiteProfitResponse{Success: true, Count: len(rows), Data: rows}, nil
}

// loadLedgerSums runs the eight ledger queries concurrently; the first error cancels the rest.
func (s *SiteProfitServiceImpl) loadLedgerSums(ctx context.Context, siteIDs []string) (siteprofit.LedgerSums, error) {
	var sums siteprofit.LedgerSums

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		sums.ManualExpense, err = s.repo.SumSiteExpenses(gCtx, siteIDs)
		return err
	})

	g.Go(func() error {
		rows, err := s.repo.ListMaterialLedgerRows(gCtx, siteIDs)
		if err != nil {
			return err
		}
		sums.MaterialCost = SumMaterialCost(rows)
		return nil
	})

	g.Go(func() (err error) {
		sums.VehicleRentCost, err = s.repo.SumVehicleRentGenerated(gCtx, siteIDs)
		return err
	})

	g.Go(func() (err error) {
		sums.LabourCost, err = s.repo.SumLabourPayments(gCtx, siteIDs)
		return err
	})

	g.Go(func() (err error) {
		sums.Receipts, err = s.repo.SumSiteReceipts(gCtx, siteIDs)
		return err
	})

	g.Go(func() (err error) {
		sums.Vouchers, err = s.repo.SumVoucherCheques(gCtx, siteIDs)
		return err
	})

	g.Go(func() (err error) {
		sums.StaffIn, err = s.repo.SumStaffIn(gCtx, siteIDs)
		return err
	})

	g.Go(func() error {
		rows, err := s.repo.ListStaffOutUnmirrored(gCtx, siteIDs)
		if err != nil {
			return err
		}
		sums.StaffOutUnmirrored = SumStaffOut(rows)
		return nil
	})

	if err := g.Wait(); err != nil {
		return siteprofit.LedgerSums{}, err
	}
	return sums, nil
}

// ExportSiteProfit writes the site profit rows as an xlsx workbook.
func (s *SiteProfitServiceImpl) ExportSiteProfit(ctx context.Context, w io.Writer) error {
	result, err := s.ComputeSiteProfit(ctx)
	if err != nil {
		return err
	}
	return export.WriteSiteProfitXLSX(w, result.Data)
}

// SumMaterialCost accumulates per-row material cost by site.
func SumMaterialCost(rows []siteprofit.MaterialLedgerRow) siteprofit.SiteSums {
	acc := make(map[string]decimal.Decimal)
	for _, row := range rows {
		acc[row.SiteID] = acc[row.SiteID].Add(row.Cost())
	}
	return toSiteSums(acc)
}

// SumStaffOut accumulates unmirrored staff out-amounts by site.
func SumStaffOut(rows []siteprofit.StaffOutRow) siteprofit.SiteSums {
	acc := make(map[string]decimal.Decimal)
	for _, row := range rows {
		acc[row.SiteID] = acc[row.SiteID].Add(row.OutAmount)
	}
	return toSiteSums(acc)
}

func toSiteSums(acc map[string]decimal.Decimal) siteprofit.SiteSums {
	sums := make(siteprofit.SiteSums, len(acc))
	for siteID, total := range acc {
		sums[siteID] = total.InexactFloat64()
	}
	return sums
}

// BuildRows merges the ledger sums into one row per site, keeping the order of sites.
func BuildRows(sites []siteprofit.Site, sums siteprofit.LedgerSums) []siteprofit.SiteProfitRow {
	rows := make([]siteprofit.SiteProfitRow, 0, len(sites))
	for _, site := range sites {
		b := siteprofit.Breakup{
			ManualSiteExpense:    sums.ManualExpense.Get(site.ID),
			StaffOutUnmirrored:   sums.StaffOutUnmirrored.Get(site.ID),
			MaterialPurchaseCost: sums.MaterialCost.Get(site.ID),
			LabourContractorCost: sums.LabourCost.Get(site.ID),
			VehicleRentCost:      sums.VehicleRentCost.Get(site.ID),
			SiteReceipt:          sums.Receipts.Get(site.ID),
			VoucherReceived:      sums.Vouchers.Get(site.ID),
			StaffIn:              sums.StaffIn.Get(site.ID),
		}

		expenses := b.ManualSiteExpense + b.StaffOutUnmirrored + b.MaterialPurchaseCost + b.LabourContractorCost + b.VehicleRentCost
		amountReceived := b.SiteReceipt + b.VoucherReceived + b.StaffIn

		rows = append(rows, siteprofit.SiteProfitRow{
			SiteID:         site.ID,
			Department:     site.Department,
			SiteName:       site.SiteName,
			Status:         site.Status,
			AmountReceived: amountReceived,
			Expenses:       expenses,
			Profit:         amountReceived - expenses,
			Breakup:        b,
		})
	}
	return rows
}
