package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/repository"
)

// SnapshotBuilder provides a fluent interface for creating test snapshots.
//
// Example usage:
//
//	// Simple creation with defaults
//	snap := testutil.NewSnapshot().Build()
//
//	// Customized snapshot
//	snap := testutil.NewSnapshot().
//	    WithScheme(testutil.NewScheme("INF001", "Alpha Fund").WithCategory("Equity").Build()).
//	    WithCashFlow("INF001", "2023-01-01", -1000).
//	    Build()
type SnapshotBuilder struct {
	snap model.Snapshot
}

// NewSnapshot returns a builder with an empty snapshot stamped with a fixed last_updated.
func NewSnapshot() *SnapshotBuilder {
	return &SnapshotBuilder{
		snap: model.Snapshot{
			SchemeDetails: []model.SchemeDetail{},
			CashFlows:     []model.CashFlow{},
			RollingStats:  model.RollingStats{},
			LastUpdated:   "2024-06-30 18:00:00",
		},
	}
}

func (b *SnapshotBuilder) WithScheme(schemes ...model.SchemeDetail) *SnapshotBuilder {
	b.snap.SchemeDetails = append(b.snap.SchemeDetails, schemes...)
	return b
}

// WithCashFlow appends a flow dated YYYY-MM-DD.
func (b *SnapshotBuilder) WithCashFlow(isin, date string, amount float64) *SnapshotBuilder {
	b.snap.CashFlows = append(b.snap.CashFlows, model.CashFlow{ISIN: isin, Date: mustDate(date), Amount: amount})
	return b
}

func (b *SnapshotBuilder) WithGrowthPoint(date string, balances map[string]model.GrowthBalance) *SnapshotBuilder {
	b.snap.GrowthChart = append(b.snap.GrowthChart, model.GrowthPoint{Date: mustDate(date), Balances: balances})
	return b
}

// WithPivotRow appends a monthly investment row and registers its month key.
func (b *SnapshotBuilder) WithPivotRow(row model.PivotRow) *SnapshotBuilder {
	b.snap.InvestmentSummary.Pivot = append(b.snap.InvestmentSummary.Pivot, row)
	for _, m := range b.snap.InvestmentSummary.Months {
		if m == row.DateKey {
			return b
		}
	}
	b.snap.InvestmentSummary.Months = append(b.snap.InvestmentSummary.Months, row.DateKey)
	return b
}

func (b *SnapshotBuilder) WithTransition(item model.TransitionItem) *SnapshotBuilder {
	b.snap.TransitionPlanning = append(b.snap.TransitionPlanning, item)
	return b
}

func (b *SnapshotBuilder) WithRollingStat(isin, period string, stat model.RollingStat) *SnapshotBuilder {
	if b.snap.RollingStats[isin] == nil {
		b.snap.RollingStats[isin] = map[string]model.RollingStat{}
	}
	b.snap.RollingStats[isin][period] = stat
	return b
}

func (b *SnapshotBuilder) WithPerformance(entry model.PerformanceEntry) *SnapshotBuilder {
	b.snap.PerformanceComparison = append(b.snap.PerformanceComparison, entry)
	return b
}

func (b *SnapshotBuilder) WithLastUpdated(stamp string) *SnapshotBuilder {
	b.snap.LastUpdated = stamp
	return b
}

// WithError marks the snapshot as an upstream failure payload.
func (b *SnapshotBuilder) WithError(msg string) *SnapshotBuilder {
	b.snap.Error = msg
	return b
}

// Build returns a pointer to a fresh copy of the snapshot.
func (b *SnapshotBuilder) Build() *model.Snapshot {
	snap := b.snap
	return &snap
}

// Save builds the snapshot and stores it in the snapshot cache without encryption.
func (b *SnapshotBuilder) Save(t *testing.T, db *sql.DB) *model.Snapshot {
	t.Helper()

	repo, err := repository.NewSnapshotRepository(db, "")
	if err != nil {
		t.Fatalf("Failed to create snapshot repository: %v", err)
	}
	snap := b.Build()
	if _, err := repo.Save(context.Background(), snap); err != nil {
		t.Fatalf("Failed to save test snapshot: %v", err)
	}
	return snap
}

// SchemeBuilder provides a fluent interface for creating scheme rows.
type SchemeBuilder struct {
	scheme model.SchemeDetail
}

// NewScheme returns a live equity scheme worth 1100 on 1000 invested.
func NewScheme(isin, name string) *SchemeBuilder {
	return &SchemeBuilder{
		scheme: model.SchemeDetail{
			ISIN:           isin,
			FundName:       name,
			Category:       "Equity",
			AMC:            "Test AMC",
			Sector:         model.OthersTag,
			Cap:            "Large Cap",
			ActivityState:  "Active",
			CurrentVal:     1100,
			InvestedVal:    1000,
			UnrealizedGain: 100,
			TotalProfit:    100,
			AbsReturn:      10,
		},
	}
}

func (b *SchemeBuilder) WithCategory(category string) *SchemeBuilder {
	b.scheme.Category = category
	return b
}

func (b *SchemeBuilder) WithAMC(amc string) *SchemeBuilder {
	b.scheme.AMC = amc
	return b
}

func (b *SchemeBuilder) WithSector(sector string) *SchemeBuilder {
	b.scheme.Sector = sector
	return b
}

func (b *SchemeBuilder) WithCap(capTag string) *SchemeBuilder {
	b.scheme.Cap = capTag
	return b
}

// WithValues sets current and invested value and the derived unrealized gain.
func (b *SchemeBuilder) WithValues(current, invested float64) *SchemeBuilder {
	b.scheme.CurrentVal = current
	b.scheme.InvestedVal = invested
	b.scheme.UnrealizedGain = current - invested
	b.scheme.TotalProfit = current - invested + b.scheme.RealizedSTCG + b.scheme.RealizedLTCG
	if invested > 0 {
		b.scheme.AbsReturn = b.scheme.TotalProfit / invested * 100
	}
	return b
}

// Closed marks the scheme as fully redeemed with zero current value.
func (b *SchemeBuilder) Closed() *SchemeBuilder {
	b.scheme.ActivityState = "Closed"
	b.scheme.CurrentVal = 0
	b.scheme.InvestedVal = 0
	b.scheme.UnrealizedGain = 0
	return b
}

func (b *SchemeBuilder) Build() model.SchemeDetail {
	return b.scheme
}

// CreateRefreshLog inserts a refresh log entry started at started and finished one second later.
func CreateRefreshLog(t *testing.T, db *sql.DB, kind model.RefreshKind, status model.RefreshStatus, started time.Time) model.RefreshLog {
	t.Helper()

	entry, err := repository.NewRefreshLogRepository(db).Insert(context.Background(), model.RefreshLog{
		Kind:       kind,
		Status:     status,
		Message:    string(kind) + " " + string(status),
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	})
	if err != nil {
		t.Fatalf("Failed to create refresh log: %v", err)
	}
	return entry
}

func mustDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
