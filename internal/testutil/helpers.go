package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/service"
)

// Sample ISINs used by SampleSnapshot.
const (
	AlphaISIN = "INF100A01011"
	BetaISIN  = "INF200B02022"
	GammaISIN = "INF300C03033"
	DeltaISIN = "INF400D04044"
)

// SampleNow is a clock value just after SampleSnapshot was produced.
var SampleNow = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

// NewTestSnapshotService wires a SnapshotService over db and client with an unencrypted cache.
func NewTestSnapshotService(t *testing.T, db *sql.DB, client service.UpstreamClient) *service.SnapshotService {
	t.Helper()

	snapshotRepo, err := repository.NewSnapshotRepository(db, "")
	if err != nil {
		t.Fatalf("Failed to create snapshot repository: %v", err)
	}
	refreshLogRepo := repository.NewRefreshLogRepository(db)

	return service.NewSnapshotService(
		client,
		snapshotRepo,
		refreshLogRepo,
	)
}

// NewTestDashboardService wires a DashboardService reading SampleSnapshot through a mocked upstream,
// pinned to SampleNow.
func NewTestDashboardService(t *testing.T, db *sql.DB) (*service.DashboardService, *MockUpstreamClient) {
	t.Helper()

	client := NewMockUpstreamClient()
	snapshots := NewTestSnapshotService(t, db, client)
	dashboard := service.NewDashboardService(snapshots).WithClock(func() time.Time { return SampleNow })
	return dashboard, client
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db, nil)
}

// SampleSnapshot returns a small portfolio: three live schemes across two AMCs and one redeemed scheme,
// with monthly investments in 2023 and 2024, transition lots and rolling stats.
func SampleSnapshot() *model.Snapshot {
	return NewSnapshot().
		WithScheme(
			NewScheme(AlphaISIN, "Alpha Bluechip Fund").WithAMC("Alpha MF").WithValues(12000, 10000).Build(),
			NewScheme(BetaISIN, "Beta Midcap Fund").WithAMC("Beta MF").WithCap("Mid Cap").WithValues(6000, 5000).Build(),
			NewScheme(GammaISIN, "Gamma Liquid Fund").WithCategory("Debt").WithAMC("Alpha MF").
				WithSector("Banking").WithValues(3150, 3000).Build(),
			NewScheme(DeltaISIN, "Delta Closed Fund").WithAMC("Beta MF").Closed().Build(),
		).
		WithCashFlow(AlphaISIN, "2023-01-15", -5000).
		WithCashFlow(AlphaISIN, "2023-07-15", -5000).
		WithCashFlow(AlphaISIN, "2024-06-30", 12000).
		WithCashFlow(BetaISIN, "2023-03-01", -5000).
		WithCashFlow(BetaISIN, "2024-06-30", 6000).
		WithCashFlow(GammaISIN, "2023-06-01", -3000).
		WithCashFlow(GammaISIN, "2024-06-30", 3150).
		WithCashFlow(DeltaISIN, "2022-01-10", -2000).
		WithCashFlow(DeltaISIN, "2023-02-10", 2500).
		WithGrowthPoint("2023-06-30", map[string]model.GrowthBalance{
			AlphaISIN: {Value: 5200, Invested: 5000},
			BetaISIN:  {Value: 5100, Invested: 5000},
			GammaISIN: {Value: 3000, Invested: 3000},
		}).
		WithGrowthPoint("2024-06-30", map[string]model.GrowthBalance{
			AlphaISIN: {Value: 12000, Invested: 10000},
			BetaISIN:  {Value: 6000, Invested: 5000},
			GammaISIN: {Value: 3150, Invested: 3000},
		}).
		WithPivotRow(pivotRow(AlphaISIN, "Alpha Bluechip Fund", 2023, 1, 5000)).
		WithPivotRow(pivotRow(BetaISIN, "Beta Midcap Fund", 2023, 3, 5000)).
		WithPivotRow(pivotRow(GammaISIN, "Gamma Liquid Fund", 2023, 6, 3000)).
		WithPivotRow(pivotRow(AlphaISIN, "Alpha Bluechip Fund", 2023, 7, 5000)).
		WithPivotRow(pivotRow(AlphaISIN, "Alpha Bluechip Fund", 2024, 2, 2000)).
		WithTransition(model.TransitionItem{
			ISIN: AlphaISIN, Scheme: "Alpha Bluechip Fund", Category: "Equity", AMC: "Alpha MF",
			Date: model.NewDate(2024, time.July, 15), DaysLeft: 14, Gain: 400,
		}).
		WithTransition(model.TransitionItem{
			ISIN: BetaISIN, Scheme: "Beta Midcap Fund", Category: "Equity", AMC: "Beta MF",
			Date: model.NewDate(2024, time.September, 1), DaysLeft: 62, Gain: 700,
		}).
		WithRollingStat(AlphaISIN, model.Period1Y, model.RollingStat{Latest: 18, Min: 4, Max: 25, Mean: 14, Median: 13}).
		WithRollingStat(BetaISIN, model.Period1Y, model.RollingStat{Latest: 22, Min: -3, Max: 30, Mean: 16, Median: 15}).
		WithRollingStat(GammaISIN, model.Period1Y, model.RollingStat{Latest: 7, Min: 6, Max: 7.5, Mean: 6.8, Median: 6.9}).
		WithPerformance(model.PerformanceEntry{ISIN: AlphaISIN, Fund: "Alpha Bluechip Fund", Category: "Equity", FundCAGR: 15, Years: 1.5}).
		WithPerformance(model.PerformanceEntry{ISIN: DeltaISIN, Fund: "Delta Closed Fund", Category: "Equity", FundCAGR: 20, Years: 1.1}).
		Build()
}

func pivotRow(isin, name string, year, month int, amount float64) model.PivotRow {
	scheme := map[string]model.SchemeDetail{
		AlphaISIN: NewScheme(AlphaISIN, name).WithAMC("Alpha MF").Build(),
		BetaISIN:  NewScheme(BetaISIN, name).WithAMC("Beta MF").WithCap("Mid Cap").Build(),
		GammaISIN: NewScheme(GammaISIN, name).WithCategory("Debt").WithAMC("Alpha MF").WithSector("Banking").Build(),
	}[isin]

	d := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return model.PivotRow{
		ISIN:          isin,
		FundName:      name,
		Category:      scheme.Category,
		AMC:           scheme.AMC,
		Sector:        scheme.Sector,
		Cap:           scheme.Cap,
		ActivityState: scheme.ActivityState,
		Year:          year,
		Month:         d.Format("Jan"),
		DateKey:       d.Format("2006-01"),
		Amount:        amount,
	}
}
