package dashboard

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/cache"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/metrics"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/utils"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// Settings fixes the deployment-specific shape of the transaction table.
type Settings struct {
	DateColumn    string
	CreditNatures []string
	DebitNatures  []string
	RecentLimit   int
	Location      *time.Location
}

type DashboardServiceImpl struct {
	repo     dashboard.DashboardRepository
	settings Settings
	cache    *cache.Cache
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewDashboardService(repo dashboard.DashboardRepository, settings Settings, c *cache.Cache, m *metrics.Metrics, logger *slog.Logger) dashboard.DashboardService {
	if !dashboard.IsKnownDateColumn(settings.DateColumn) {
		settings.DateColumn = dashboard.TxnDateColumnFallback
	}
	if settings.RecentLimit <= 0 {
		settings.RecentLimit = 20
	}
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardServiceImpl{
		repo:     repo,
		settings: settings,
		cache:    c,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// orDefault collapses a failed sub-result to zero and reports the failure.
func orDefault[T any](value T, err error, zero T, report func(error)) T {
	if err != nil {
		report(err)
		return zero
	}
	return value
}

// degraded marks the summary as partial so it is served but never cached.
func (s *DashboardServiceImpl) degraded(ctx context.Context, partial *atomic.Bool, part string) func(error) {
	return func(err error) {
		partial.Store(true)
		s.metrics.IncDegraded(part)
		s.logger.WarnContext(ctx, "dashboard part degraded to zero value",
			slog.String("part", part),
			slog.String("error", err.Error()),
		)
	}
}

// GetSummary returns the dashboard of one site over the requested window.
// Only an invalid request or an unknown site fails the call.
func (s *DashboardServiceImpl) GetSummary(ctx context.Context, req dashboard.SummaryRequest) (*dashboard.DashboardSummary, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	rng, err := ResolveDateRange(req.From, req.To, s.now(), s.settings.Location)
	if err != nil {
		return nil, err
	}

	var partial atomic.Bool
	loader := func(ctx context.Context) (*dashboard.DashboardSummary, error) {
		return s.compute(ctx, req.SiteID, rng, &partial)
	}
	complete := func(*dashboard.DashboardSummary) bool { return !partial.Load() }

	key, err := s.cache.BuildKey(ctx, "dashboard", req.SiteID, rng.From.Format(dateLayout), rng.To.Format(dateLayout))
	if err != nil {
		s.logger.WarnContext(ctx, "dashboard cache unavailable", slog.String("error", err.Error()))
		return loader(ctx)
	}
	return cache.FetchJSONIf(ctx, s.cache, key, loader, complete)
}

func (s *DashboardServiceImpl) compute(ctx context.Context, siteID string, rng dashboard.DateRange, partial *atomic.Bool) (*dashboard.DashboardSummary, error) {
	defer s.metrics.ObserveAggregation("dashboard_summary", time.Now())

	site, err := s.repo.GetSiteRecord(ctx, siteID)
	if err != nil {
		return nil, err
	}

	name, _ := utils.FirstPresent[string](site, dashboard.SiteNameFields...)
	summary := &dashboard.DashboardSummary{
		Site:               dashboard.SiteRef{ID: siteID, Name: name},
		Range:              dashboard.RangeRef{From: rng.From.Format(dateLayout), To: rng.To.Format(dateLayout)},
		ProfitTrend:        []dashboard.TrendPoint{},
		CostBreakdown:      []dashboard.CostBreakdownItem{},
		VehicleFuelSummary: []any{},
		FuelStationSummary: []any{},
		ContractorSummary:  []any{},
		Recent:             []dashboard.RecentTransaction{},
	}

	q := dashboard.TxnQuery{SiteID: siteID, DateColumn: s.settings.DateColumn, Range: rng}
	credit, debit := s.settings.CreditNatures, s.settings.DebitNatures
	kpis := &summary.KPIs

	// Every goroutine writes its own field and never returns an error.
	var g errgroup.Group

	g.Go(func() error {
		v, err := s.repo.SumByNature(ctx, q, credit)
		kpis.Inflow = orDefault(v, err, 0, s.degraded(ctx, partial, "inflow"))
		return nil
	})
	g.Go(func() error {
		v, err := s.repo.SumByNature(ctx, q, debit)
		kpis.Outflow = orDefault(v, err, 0, s.degraded(ctx, partial, "outflow"))
		return nil
	})
	g.Go(func() error {
		v, err := s.repo.CountLedgersByType(ctx, dashboard.LedgerTypeStaff)
		kpis.StaffCount = orDefault(v, err, 0, s.degraded(ctx, partial, "staff_count"))
		return nil
	})
	g.Go(func() error {
		v, err := s.repo.CountLedgersByType(ctx, dashboard.LedgerTypeSupervisor)
		kpis.SupervisorCount = orDefault(v, err, 0, s.degraded(ctx, partial, "supervisor_count"))
		return nil
	})
	g.Go(func() error {
		v, err := s.repo.SumBySource(ctx, q, debit, dashboard.SourceFuel)
		kpis.DieselAmount = orDefault(v, err, 0, s.degraded(ctx, partial, "diesel_amount"))
		return nil
	})
	g.Go(func() error {
		v, err := s.repo.SumBySource(ctx, q, debit, dashboard.SourceVehicleRent)
		kpis.VehicleRentAmount = orDefault(v, err, 0, s.degraded(ctx, partial, "vehicle_rent_amount"))
		return nil
	})
	g.Go(func() error {
		v, err := s.repo.SumBySource(ctx, q, debit, dashboard.SourceLabour)
		kpis.LabourAmount = orDefault(v, err, 0, s.degraded(ctx, partial, "labour_amount"))
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.DailyTrend(ctx, q, credit, debit)
		summary.ProfitTrend = buildTrend(orDefault(rows, err, nil, s.degraded(ctx, partial, "profit_trend")))
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.SumGroupedBySource(ctx, q, debit)
		summary.CostBreakdown = buildCostBreakdown(orDefault(rows, err, nil, s.degraded(ctx, partial, "cost_breakdown")))
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListRecentTransactions(ctx, q, s.settings.RecentLimit)
		summary.Recent = buildRecent(orDefault(rows, err, nil, s.degraded(ctx, partial, "recent")), q.DateColumn)
		return nil
	})

	_ = g.Wait()

	kpis.Profit = kpis.Inflow - kpis.Outflow
	return summary, nil
}

func buildTrend(rows []dashboard.TrendRow) []dashboard.TrendPoint {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Day.Before(rows[j].Day) })
	points := make([]dashboard.TrendPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, dashboard.TrendPoint{
			Date:    r.Day.Format(dateLayout),
			Inflow:  r.Inflow,
			Outflow: r.Outflow,
			Profit:  r.Inflow - r.Outflow,
		})
	}
	return points
}

func buildCostBreakdown(rows []dashboard.SourceAmount) []dashboard.CostBreakdownItem {
	items := make([]dashboard.CostBreakdownItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dashboard.CostBreakdownItem{Label: r.Source, Amount: r.Amount})
	}
	return items
}

func buildRecent(records []map[string]any, dateColumn string) []dashboard.RecentTransaction {
	recent := make([]dashboard.RecentTransaction, 0, len(records))
	for _, rec := range records {
		tx := dashboard.RecentTransaction{
			RefNo:  utils.FirstPresentPtr[string](rec, dashboard.RefNoFields...),
			Party:  utils.FirstPresentPtr[string](rec, dashboard.PartyFields...),
			Remark: utils.FirstPresentPtr[string](rec, dashboard.RemarkFields...),
		}
		if d, ok := utils.FirstPresent[time.Time](rec, dateColumn, dashboard.TxnDateColumnFallback); ok {
			tx.Date = d.Format(dateLayout)
		}
		tx.Source, _ = utils.FirstPresent[string](rec, "source")
		tx.Amount, _ = utils.FirstPresent[float64](rec, "amount")
		recent = append(recent, tx)
	}
	return recent
}
