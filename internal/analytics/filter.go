// Package analytics derives every dashboard view from a snapshot and a ViewState.
//
// All functions are pure: they never mutate the snapshot or the state and return freshly allocated
// slices, so the same snapshot can be shared by concurrent requests.
package analytics

import (
	"strings"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// FilteredSchemes applies the tag selections (category, activity, AMC, sector, cap) and, when HideZero
// is set, drops schemes whose current value is not positive.
//
// With no selections and HideZero off the input order and content are returned unchanged.
func FilteredSchemes(snap *model.Snapshot, v model.ViewState) []model.SchemeDetail {
	if snap == nil {
		return nil
	}
	out := make([]model.SchemeDetail, 0, len(snap.SchemeDetails))
	for _, s := range snap.SchemeDetails {
		if !v.Matches(s) {
			continue
		}
		if v.HideZero && s.CurrentVal <= 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ISINSet returns the set of ISINs in schemes.
func ISINSet(schemes []model.SchemeDetail) map[string]struct{} {
	set := make(map[string]struct{}, len(schemes))
	for _, s := range schemes {
		set[s.ISIN] = struct{}{}
	}
	return set
}

// FilteredCashFlows keeps the flows whose ISIN survives FilteredSchemes.
// This is the only link between scheme-level filters and the flow-based views.
func FilteredCashFlows(snap *model.Snapshot, v model.ViewState) []model.CashFlow {
	if snap == nil {
		return nil
	}
	return flowsFor(snap.CashFlows, ISINSet(FilteredSchemes(snap, v)))
}

func flowsFor(flows []model.CashFlow, isins map[string]struct{}) []model.CashFlow {
	out := make([]model.CashFlow, 0, len(flows))
	for _, cf := range flows {
		if _, ok := isins[cf.ISIN]; ok {
			out = append(out, cf)
		}
	}
	return out
}

// FlowsByISIN indexes flows by instrument, preserving order within each instrument.
func FlowsByISIN(flows []model.CashFlow) map[string][]model.CashFlow {
	out := make(map[string][]model.CashFlow)
	for _, cf := range flows {
		out[cf.ISIN] = append(out[cf.ISIN], cf)
	}
	return out
}

// SearchSchemes keeps schemes whose fund name contains query, case-insensitively.
// An empty query returns the input.
func SearchSchemes(schemes []model.SchemeDetail, query string) []model.SchemeDetail {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return schemes
	}
	out := make([]model.SchemeDetail, 0, len(schemes))
	for _, s := range schemes {
		if strings.Contains(strings.ToLower(s.FundName), q) {
			out = append(out, s)
		}
	}
	return out
}

// FilteredTransitions keeps the transition items whose ISIN survives FilteredSchemes.
// Items only carry an ISIN and a category, so tag selections and HideZero are resolved through the
// scheme list. An item with no matching scheme falls back to its own tags and is hidden by HideZero.
func FilteredTransitions(snap *model.Snapshot, v model.ViewState) []model.TransitionItem {
	if snap == nil {
		return nil
	}
	known := ISINSet(snap.SchemeDetails)
	keep := ISINSet(FilteredSchemes(snap, v))
	out := make([]model.TransitionItem, 0, len(snap.TransitionPlanning))
	for _, item := range snap.TransitionPlanning {
		if _, ok := known[item.ISIN]; !ok {
			if v.HideZero || !v.Matches(item) {
				continue
			}
			out = append(out, item)
			continue
		}
		if _, ok := keep[item.ISIN]; ok {
			out = append(out, item)
		}
	}
	return out
}

// FilteredPivotRows applies the tag selections to pivot rows using their own tags.
// HideZero keeps only rows whose ISIN currently has a positive value.
func FilteredPivotRows(snap *model.Snapshot, v model.ViewState) []model.PivotRow {
	if snap == nil {
		return nil
	}
	active := activeISINs(snap)
	out := make([]model.PivotRow, 0, len(snap.InvestmentSummary.Pivot))
	for _, row := range snap.InvestmentSummary.Pivot {
		if !v.Matches(row) {
			continue
		}
		if v.HideZero {
			if _, ok := active[row.ISIN]; !ok {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

func activeISINs(snap *model.Snapshot) map[string]struct{} {
	set := make(map[string]struct{}, len(snap.SchemeDetails))
	for _, s := range snap.SchemeDetails {
		if s.CurrentVal > 0 {
			set[s.ISIN] = struct{}{}
		}
	}
	return set
}

// schemeNames maps ISIN to fund name over every scheme in the snapshot.
func schemeNames(snap *model.Snapshot) map[string]string {
	names := make(map[string]string, len(snap.SchemeDetails))
	for _, s := range snap.SchemeDetails {
		names[s.ISIN] = s.FundName
	}
	return names
}
