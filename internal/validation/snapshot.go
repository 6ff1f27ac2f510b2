package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// ValidateSnapshot checks a snapshot received from the aggregation service before it is cached.
// Every failure wraps apperrors.ErrSnapshotMalformed; field problems are reported as *Error.
func ValidateSnapshot(snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: empty payload", apperrors.ErrSnapshotMalformed)
	}
	if snap.Error != "" {
		return fmt.Errorf("%w: %s", apperrors.ErrSnapshotMalformed, snap.Error)
	}

	errors := make(map[string]string)
	seen := make(map[string]bool, len(snap.SchemeDetails))

	for i, s := range snap.SchemeDetails {
		field := fmt.Sprintf("scheme_details[%d]", i)
		isin := strings.TrimSpace(s.ISIN)
		switch {
		case isin == "":
			errors[field+".ISIN"] = "ISIN is required"
		case seen[isin]:
			errors[field+".ISIN"] = fmt.Sprintf("duplicate ISIN %s", isin)
		}
		seen[isin] = true

		if strings.TrimSpace(s.FundName) == "" {
			errors[field+".Fund Name"] = "fund name is required"
		}
		if s.CurrentVal < 0 {
			errors[field+".current_val"] = "current value cannot be negative"
		}
	}

	for i, cf := range snap.CashFlows {
		if strings.TrimSpace(cf.ISIN) == "" {
			errors[fmt.Sprintf("cash_flows[%d].isin", i)] = "isin is required"
		}
		if cf.Date.IsZero() {
			errors[fmt.Sprintf("cash_flows[%d].date", i)] = "date is required"
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%w: %w", apperrors.ErrSnapshotMalformed, &Error{Fields: errors})
	}
	return nil
}

// NormalizeSnapshot returns a copy of snap with trimmed tags, missing sector and cap tags replaced by
// model.OthersTag, and empty filter option lists derived from the scheme details.
func NormalizeSnapshot(snap *model.Snapshot) *model.Snapshot {
	out := *snap

	out.SchemeDetails = slices.Clone(snap.SchemeDetails)
	for i := range out.SchemeDetails {
		s := &out.SchemeDetails[i]
		s.ISIN = strings.TrimSpace(s.ISIN)
		s.Category = strings.TrimSpace(s.Category)
		s.AMC = strings.TrimSpace(s.AMC)
		s.Sector = orOthers(s.Sector)
		s.Cap = orOthers(s.Cap)
	}

	out.InvestmentSummary.Pivot = slices.Clone(snap.InvestmentSummary.Pivot)
	for i := range out.InvestmentSummary.Pivot {
		p := &out.InvestmentSummary.Pivot[i]
		p.Sector = orOthers(p.Sector)
		p.Cap = orOthers(p.Cap)
	}

	out.TransitionPlanning = slices.Clone(snap.TransitionPlanning)
	for i := range out.TransitionPlanning {
		t := &out.TransitionPlanning[i]
		t.Sector = orOthers(t.Sector)
		t.Cap = orOthers(t.Cap)
	}

	if len(out.Categories) == 0 {
		out.Categories = distinct(out.SchemeDetails, model.DimensionCategory)
	}
	if len(out.AMCs) == 0 {
		out.AMCs = distinct(out.SchemeDetails, model.DimensionAMC)
	}
	if len(out.Sectors) == 0 {
		out.Sectors = distinct(out.SchemeDetails, model.DimensionSector)
	}
	if len(out.Caps) == 0 {
		out.Caps = distinct(out.SchemeDetails, model.DimensionCap)
	}
	if len(out.ActivityStates) == 0 {
		out.ActivityStates = distinct(out.SchemeDetails, model.DimensionActivity)
	}
	return &out
}

func orOthers(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return model.OthersTag
	}
	return tag
}

func distinct(schemes []model.SchemeDetail, d model.Dimension) []string {
	var values []string
	for _, s := range schemes {
		v := s.Tag(d)
		if v != "" && !slices.Contains(values, v) {
			values = append(values, v)
		}
	}
	slices.Sort(values)
	return values
}
