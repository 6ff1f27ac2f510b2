package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/analytics"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// SnapshotSource supplies the snapshot views are derived from.
type SnapshotSource interface {
	Current(ctx context.Context) (*model.Snapshot, error)
}

// DashboardService derives every dashboard view from the current snapshot and a ViewState.
// It holds no state of its own: each call reads the snapshot once and computes over that pointer, so a
// concurrent reload never mixes two snapshots within one response.
type DashboardService struct {
	source SnapshotSource
	now    func() time.Time
}

// NewDashboardService creates a new DashboardService reading from source.
func NewDashboardService(source SnapshotSource) *DashboardService {
	return &DashboardService{
		source: source,
		now:    time.Now,
	}
}

// WithClock replaces the clock used as "now" for date range cutoffs.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// subset is the filtered slice of one snapshot that most views start from.
type subset struct {
	snap    *model.Snapshot
	schemes []model.SchemeDetail
	flows   []model.CashFlow
}

func (s *DashboardService) subset(ctx context.Context, v model.ViewState) (subset, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return subset{}, err
	}
	return subset{
		snap:    snap,
		schemes: analytics.FilteredSchemes(snap, v),
		flows:   analytics.FilteredCashFlows(snap, v),
	}, nil
}

// Build computes every dashboard section for v.
//
// Sections are independent and are computed concurrently; each writes its own field of the result, so the
// output is the same as computing them one after another.
//
// Returns:
//   - model.Dashboard: All sections for the same snapshot
//   - error: The snapshot lookup error, or apperrors.ErrFailedToBuildDashboard if ctx is cancelled
func (s *DashboardService) Build(ctx context.Context, v model.ViewState) (model.Dashboard, error) {
	sub, err := s.subset(ctx, v)
	if err != nil {
		return model.Dashboard{}, err
	}
	now := s.now()

	d := model.Dashboard{
		DataStats:   sub.snap.DataStats,
		LastUpdated: sub.snap.LastUpdated,
	}

	g, gctx := errgroup.WithContext(ctx)
	section := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	section(func() { d.Overview = analytics.Overview(sub.schemes, sub.flows) })
	section(func() { d.Schemes = analytics.SchemeTable(sub.schemes, sub.flows, v) })
	section(func() { d.Allocations = analytics.Allocations(sub.schemes) })
	section(func() { d.Segments = analytics.Segments(sub.schemes, sub.flows) })
	section(func() {
		d.Transitions = analytics.TransitionBuckets(analytics.FilteredTransitions(sub.snap, v), v)
	})
	section(func() {
		rows := analytics.FilteredPivotRows(sub.snap, v)
		d.Investments = analytics.BuildPivot(rows, v)
	})
	section(func() {
		rows := analytics.FilteredPivotRows(sub.snap, v)
		d.Trend = analytics.MonthlyTrend(rows, sub.snap.InvestmentSummary.Months, v.TrendRange, now)
	})
	section(func() {
		d.Growth = analytics.GrowthSeries(sub.snap.GrowthChart, analytics.ISINSet(sub.schemes), v.GrowthRange, now)
	})
	section(func() { d.Rolling = analytics.RollingView(sub.snap, sub.schemes, v) })
	section(func() { d.Comparison = analytics.Comparison(sub.snap, sub.schemes, sub.flows) })

	if err := g.Wait(); err != nil {
		return model.Dashboard{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToBuildDashboard, err)
	}
	return d, nil
}

// Overview returns the KPIs and overall XIRR of the filtered portfolio.
func (s *DashboardService) Overview(ctx context.Context, v model.ViewState) (model.Overview, error) {
	sub, err := s.subset(ctx, v)
	if err != nil {
		return model.Overview{}, err
	}
	return analytics.Overview(sub.schemes, sub.flows), nil
}

// Schemes returns the searched and sorted scheme table.
func (s *DashboardService) Schemes(ctx context.Context, v model.ViewState) (model.SchemeTable, error) {
	sub, err := s.subset(ctx, v)
	if err != nil {
		return model.SchemeTable{}, err
	}
	return analytics.SchemeTable(sub.schemes, sub.flows, v), nil
}

// Allocation returns current value grouped by d.
func (s *DashboardService) Allocation(ctx context.Context, v model.ViewState, d model.Dimension) ([]model.AllocationSlice, error) {
	sub, err := s.subset(ctx, v)
	if err != nil {
		return nil, err
	}
	return analytics.Allocation(sub.schemes, d), nil
}

// Segment returns the XIRR of each group along d.
func (s *DashboardService) Segment(ctx context.Context, v model.ViewState, d model.Dimension) ([]model.SegmentReturn, error) {
	sub, err := s.subset(ctx, v)
	if err != nil {
		return nil, err
	}
	return analytics.SegmentReturns(sub.schemes, sub.flows, d), nil
}

// Transitions returns the short to long term transition buckets.
func (s *DashboardService) Transitions(ctx context.Context, v model.ViewState) ([]model.TaxBucket, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TransitionBuckets(analytics.FilteredTransitions(snap, v), v), nil
}

// Investments returns the fund by month investment pivot.
func (s *DashboardService) Investments(ctx context.Context, v model.ViewState) (model.PivotTable, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return model.PivotTable{}, err
	}
	return analytics.BuildPivot(analytics.FilteredPivotRows(snap, v), v), nil
}

// Trend returns monthly investment totals with 3 and 6 month moving averages.
func (s *DashboardService) Trend(ctx context.Context, v model.ViewState) ([]model.TrendPoint, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	rows := analytics.FilteredPivotRows(snap, v)
	return analytics.MonthlyTrend(rows, snap.InvestmentSummary.Months, v.TrendRange, s.now()), nil
}

// Growth returns the aggregated value against invested series.
func (s *DashboardService) Growth(ctx context.Context, v model.ViewState) ([]model.GrowthSeriesPoint, error) {
	sub, err := s.subset(ctx, v)
	if err != nil {
		return nil, err
	}
	return analytics.GrowthSeries(sub.snap.GrowthChart, analytics.ISINSet(sub.schemes), v.GrowthRange, s.now()), nil
}

// Rolling returns the rolling return stats for v.RollingPeriod.
func (s *DashboardService) Rolling(ctx context.Context, v model.ViewState) (model.RollingView, error) {
	sub, err := s.subset(ctx, v)
	if err != nil {
		return model.RollingView{}, err
	}
	return analytics.RollingView(sub.snap, sub.schemes, v), nil
}

// Comparison returns investor XIRR against fund CAGR for every benchmarked scheme.
func (s *DashboardService) Comparison(ctx context.Context, v model.ViewState) ([]model.ComparisonRow, error) {
	sub, err := s.subset(ctx, v)
	if err != nil {
		return nil, err
	}
	return analytics.Comparison(sub.snap, sub.schemes, sub.flows), nil
}
