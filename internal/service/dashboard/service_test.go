package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/cache"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/metrics"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errEnum = errors.New(`invalid input value for enum "TxnNature"`)

// fakeRepo stores transactions in memory and matches natures the way the SQL does.
type fakeRepo struct {
	mu         sync.Mutex
	sites      map[string]map[string]any
	txns       []fakeTxn
	ledgers    map[string]int64
	failParts  map[string]error
	siteCalls  int
	lastQuery  dashboard.TxnQuery
	recentSeen int
}

type fakeTxn struct {
	day    time.Time
	nature string
	source string
	amount float64
	extra  map[string]any
}

func (f *fakeRepo) fail(part string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failParts[part]
}

func (f *fakeRepo) inWindow(q dashboard.TxnQuery) []fakeTxn {
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
	var out []fakeTxn
	for _, t := range f.txns {
		if !t.day.Before(q.Range.From) && !t.day.After(q.Range.To) {
			out = append(out, t)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (f *fakeRepo) GetSiteRecord(ctx context.Context, siteID string) (map[string]any, error) {
	f.siteCalls++
	rec, ok := f.sites[siteID]
	if !ok {
		return nil, dashboard.ErrSiteNotFound
	}
	return rec, nil
}

func (f *fakeRepo) DetectTxnDateColumn(ctx context.Context, candidates []string, fallback string) string {
	return fallback
}

func (f *fakeRepo) SumByNature(ctx context.Context, q dashboard.TxnQuery, natures []string) (float64, error) {
	if err := f.fail("nature"); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range f.inWindow(q) {
		if contains(natures, t.nature) {
			sum += t.amount
		}
	}
	return sum, nil
}

func (f *fakeRepo) SumBySource(ctx context.Context, q dashboard.TxnQuery, natures []string, source string) (float64, error) {
	if err := f.fail("source"); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range f.inWindow(q) {
		if contains(natures, t.nature) && t.source == source {
			sum += t.amount
		}
	}
	return sum, nil
}

func (f *fakeRepo) SumGroupedBySource(ctx context.Context, q dashboard.TxnQuery, natures []string) ([]dashboard.SourceAmount, error) {
	if err := f.fail("breakdown"); err != nil {
		return nil, err
	}
	totals := map[string]float64{}
	var order []string
	for _, t := range f.inWindow(q) {
		if !contains(natures, t.nature) {
			continue
		}
		if _, ok := totals[t.source]; !ok {
			order = append(order, t.source)
		}
		totals[t.source] += t.amount
	}
	out := make([]dashboard.SourceAmount, 0, len(order))
	for _, s := range order {
		out = append(out, dashboard.SourceAmount{Source: s, Amount: totals[s]})
	}
	return out, nil
}

func (f *fakeRepo) DailyTrend(ctx context.Context, q dashboard.TxnQuery, credit, debit []string) ([]dashboard.TrendRow, error) {
	if err := f.fail("trend"); err != nil {
		return nil, err
	}
	byDay := map[string]int{}
	var rows []dashboard.TrendRow
	for _, t := range f.inWindow(q) {
		key := t.day.Format("2006-01-02")
		idx, ok := byDay[key]
		if !ok {
			rows = append(rows, dashboard.TrendRow{Day: startOfDay(t.day)})
			idx = len(rows) - 1
			byDay[key] = idx
		}
		if contains(credit, t.nature) {
			rows[idx].Inflow += t.amount
		}
		if contains(debit, t.nature) {
			rows[idx].Outflow += t.amount
		}
	}
	// rows are returned unsorted on purpose
	return rows, nil
}

func (f *fakeRepo) CountLedgersByType(ctx context.Context, typeName string) (int64, error) {
	if err := f.fail("ledgers"); err != nil {
		return 0, err
	}
	return f.ledgers[strings.ToUpper(typeName)], nil
}

func (f *fakeRepo) ListRecentTransactions(ctx context.Context, q dashboard.TxnQuery, limit int) ([]map[string]any, error) {
	if err := f.fail("recent"); err != nil {
		return nil, err
	}
	var out []map[string]any
	txns := f.inWindow(q)
	for i := len(txns) - 1; i >= 0 && len(out) < limit; i-- {
		t := txns[i]
		rec := map[string]any{
			q.DateColumn: t.day,
			"source":     t.source,
			"amount":     t.amount,
			"nature":     t.nature,
		}
		for k, v := range t.extra {
			rec[k] = v
		}
		out = append(out, rec)
	}
	f.mu.Lock()
	f.recentSeen = limit
	f.mu.Unlock()
	return out, nil
}

func day(s string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", s, time.UTC)
	return t.Add(10 * time.Hour)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sites: map[string]map[string]any{
			"site-1": {"id": "site-1", "name": nil, "site_name": "Riverside Tower", "status": "ACTIVE"},
		},
		ledgers: map[string]int64{"STAFF": 4, "SUPERVISOR": 1},
		txns: []fakeTxn{
			{day: day("2025-01-05"), nature: "CREDIT", source: "RECEIPT", amount: 9999},
			{day: day("2025-01-12"), nature: "CREDIT", source: "RECEIPT", amount: 5000, extra: map[string]any{"reference_no": "RC-1", "party_name": "Owner"}},
			{day: day("2025-01-12"), nature: "DEBIT", source: "FUEL", amount: 300, extra: map[string]any{"remarks": "diesel"}},
			{day: day("2025-01-15"), nature: "OUT", source: "VEHICLE_RENT", amount: 1200},
			{day: day("2025-01-14"), nature: "EXPENSE", source: "LABOUR", amount: 800},
			{day: day("2025-01-20"), nature: "IN", source: "STAFF", amount: 50},
		},
	}
}

func newTestService(repo dashboard.DashboardRepository, c *cache.Cache) *DashboardServiceImpl {
	svc := NewDashboardService(repo, Settings{
		DateColumn:    "entry_date",
		CreditNatures: []string{"CREDIT", "IN", "RECEIPT"},
		DebitNatures:  []string{"DEBIT", "OUT", "EXPENSE"},
		RecentLimit:   20,
		Location:      time.UTC,
	}, c, metrics.NewMetrics(), nil).(*DashboardServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestGetSummary_ComputesKPIs(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	got, err := svc.GetSummary(context.Background(), dashboard.SummaryRequest{SiteID: "site-1", From: "2025-01-10"})
	require.NoError(t, err)

	assert.Equal(t, dashboard.SiteRef{ID: "site-1", Name: "Riverside Tower"}, got.Site)
	assert.Equal(t, dashboard.RangeRef{From: "2025-01-10", To: "2025-02-09"}, got.Range)
	assert.Equal(t, dashboard.KPIs{
		Inflow:            5050,
		Outflow:           2300,
		Profit:            2750,
		StaffCount:        4,
		SupervisorCount:   1,
		DieselQty:         0,
		DieselAmount:      300,
		VehicleRentAmount: 1200,
		LabourAmount:      800,
	}, got.KPIs)
	assert.Equal(t, "entry_date", repo.lastQuery.DateColumn)

	assert.Equal(t, []dashboard.TrendPoint{
		{Date: "2025-01-12", Inflow: 5000, Outflow: 300, Profit: 4700},
		{Date: "2025-01-14", Inflow: 0, Outflow: 800, Profit: -800},
		{Date: "2025-01-15", Inflow: 0, Outflow: 1200, Profit: -1200},
		{Date: "2025-01-20", Inflow: 50, Outflow: 0, Profit: 50},
	}, got.ProfitTrend)

	assert.ElementsMatch(t, []dashboard.CostBreakdownItem{
		{Label: "FUEL", Amount: 300},
		{Label: "VEHICLE_RENT", Amount: 1200},
		{Label: "LABOUR", Amount: 800},
	}, got.CostBreakdown)

	assert.Empty(t, got.VehicleFuelSummary)
	assert.Empty(t, got.FuelStationSummary)
	assert.Empty(t, got.ContractorSummary)

	require.Len(t, got.Recent, 5)
	var receipt dashboard.RecentTransaction
	for _, r := range got.Recent {
		if r.RefNo != nil {
			receipt = r
		}
	}
	assert.Equal(t, "2025-01-12", receipt.Date)
	assert.Equal(t, "RECEIPT", receipt.Source)
	assert.Equal(t, "RC-1", *receipt.RefNo)
	assert.Equal(t, "Owner", *receipt.Party)
	assert.Nil(t, receipt.Remark)
	assert.Equal(t, 5000.0, receipt.Amount)
}

func TestGetSummary_UnknownNaturesResolveToZero(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	svc.settings.CreditNatures = []string{"INFLOW"}
	svc.settings.DebitNatures = []string{"OUTFLOW"}

	got, err := svc.GetSummary(context.Background(), dashboard.SummaryRequest{SiteID: "site-1", From: "2025-01-10"})
	require.NoError(t, err)
	assert.Zero(t, got.KPIs.Inflow)
	assert.Zero(t, got.KPIs.Outflow)
	assert.Zero(t, got.KPIs.Profit)
}

func TestGetSummary_FailingPartsDegradeToZero(t *testing.T) {
	repo := newFakeRepo()
	repo.failParts = map[string]error{
		"nature":    errEnum,
		"source":    errEnum,
		"breakdown": errors.New("column source does not exist"),
		"trend":     errors.New("function date_trunc does not exist"),
		"ledgers":   errors.New(`relation "ledger_types" does not exist`),
		"recent":    errors.New("timeout"),
	}
	m := metrics.NewMetrics()
	svc := newTestService(repo, nil)
	svc.metrics = m

	got, err := svc.GetSummary(context.Background(), dashboard.SummaryRequest{SiteID: "site-1"})
	require.NoError(t, err)

	assert.Equal(t, dashboard.KPIs{}, got.KPIs)
	assert.NotNil(t, got.ProfitTrend)
	assert.Empty(t, got.ProfitTrend)
	assert.NotNil(t, got.CostBreakdown)
	assert.Empty(t, got.CostBreakdown)
	assert.NotNil(t, got.Recent)
	assert.Empty(t, got.Recent)
	assert.Equal(t, "Riverside Tower", got.Site.Name)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"profitTrend":[]`)
	assert.Contains(t, string(raw), `"recent":[]`)
	assert.Contains(t, string(raw), `"vehicleFuelSummary":[]`)
}

func TestGetSummary_SiteNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	got, err := svc.GetSummary(context.Background(), dashboard.SummaryRequest{SiteID: "missing"})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, dashboard.ErrSiteNotFound)
}

func TestGetSummary_ValidatesRequest(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	_, err := svc.GetSummary(context.Background(), dashboard.SummaryRequest{From: "10-01-2025"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "siteId")
	assert.Contains(t, verrs.ToMap(), "from")

	_, err = svc.GetSummary(context.Background(), dashboard.SummaryRequest{SiteID: "site-1", From: "2025-02-01", To: "2025-01-01"})
	assert.ErrorIs(t, err, dashboard.ErrInvalidDateRange)
}

func TestGetSummary_DefaultWindowAndRecentLimit(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	svc.settings.RecentLimit = 2

	got, err := svc.GetSummary(context.Background(), dashboard.SummaryRequest{SiteID: "site-1"})
	require.NoError(t, err)
	assert.Equal(t, dashboard.RangeRef{From: "2025-01-30", To: "2025-03-01"}, got.Range)
	assert.Equal(t, 2, repo.recentSeen)
}

func TestGetSummary_CachesPerWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := newFakeRepo()
	svc := newTestService(repo, cache.New(client, time.Minute))
	ctx := context.Background()

	first, err := svc.GetSummary(ctx, dashboard.SummaryRequest{SiteID: "site-1", From: "2025-01-10"})
	require.NoError(t, err)
	second, err := svc.GetSummary(ctx, dashboard.SummaryRequest{SiteID: "site-1", From: "2025-01-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.siteCalls)
	assert.Equal(t, first, second)

	_, err = svc.GetSummary(ctx, dashboard.SummaryRequest{SiteID: "site-1", From: "2025-01-11"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.siteCalls)

	_, err = svc.GetSummary(ctx, dashboard.SummaryRequest{SiteID: "missing"})
	assert.ErrorIs(t, err, dashboard.ErrSiteNotFound)
	_, err = svc.GetSummary(ctx, dashboard.SummaryRequest{SiteID: "missing"})
	assert.ErrorIs(t, err, dashboard.ErrSiteNotFound)
}

func TestGetSummary_PartialSummaryIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := newFakeRepo()
	repo.failParts = map[string]error{"nature": errors.New("connection reset")}
	svc := newTestService(repo, cache.New(client, time.Minute))
	ctx := context.Background()
	req := dashboard.SummaryRequest{SiteID: "site-1", From: "2025-01-10"}

	degraded, err := svc.GetSummary(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, degraded.KPIs.Inflow)

	repo.mu.Lock()
	repo.failParts = nil
	repo.mu.Unlock()

	recovered, err := svc.GetSummary(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 5050.0, recovered.KPIs.Inflow)
	assert.Equal(t, 2, repo.siteCalls)

	cached, err := svc.GetSummary(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, recovered, cached)
	assert.Equal(t, 2, repo.siteCalls)
}

func TestNewDashboardService_UnknownDateColumnFallsBack(t *testing.T) {
	svc := NewDashboardService(newFakeRepo(), Settings{DateColumn: "posted_on"}, nil, nil, nil).(*DashboardServiceImpl)
	assert.Equal(t, dashboard.TxnDateColumnFallback, svc.settings.DateColumn)
	assert.Equal(t, 20, svc.settings.RecentLimit)
}

func TestOrDefault(t *testing.T) {
	var reported error
	report := func(err error) { reported = err }

	assert.Equal(t, 3.5, orDefault(3.5, nil, 0, report))
	assert.Nil(t, reported)

	assert.Equal(t, 0.0, orDefault(3.5, errEnum, 0, report))
	assert.ErrorIs(t, reported, errEnum)
}
