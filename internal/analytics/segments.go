package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/xirr"
)

// MinSegmentRate hides segments whose XIRR rounds to zero.
const MinSegmentRate = 0.01

// SegmentReturns partitions flows by the tag on d of the scheme they belong to and solves XIRR per group.
//
// The ISIN to tag lookup is built from schemes, which must be the filtered scheme list; flows whose ISIN
// is not in it are dropped. Groups with |XIRR| < MinSegmentRate are omitted. Results are ordered by XIRR,
// highest first, then by label.
func SegmentReturns(schemes []model.SchemeDetail, flows []model.CashFlow, d model.Dimension) []model.SegmentReturn {
	lookup := make(map[string]string, len(schemes))
	for _, s := range schemes {
		lookup[s.ISIN] = groupLabel(s, d)
	}

	groups := make(map[string][]model.CashFlow)
	var order []string
	for _, cf := range flows {
		label, ok := lookup[cf.ISIN]
		if !ok {
			continue
		}
		if _, seen := groups[label]; !seen {
			order = append(order, label)
		}
		groups[label] = append(groups[label], cf)
	}

	out := make([]model.SegmentReturn, 0, len(order))
	for _, label := range order {
		rate := xirr.Solve(groups[label])
		if math.Abs(rate) < MinSegmentRate {
			continue
		}
		out = append(out, model.SegmentReturn{
			Label: label,
			XIRR:  rate,
			Flows: len(groups[label]),
		})
	}

	slices.SortStableFunc(out, func(a, b model.SegmentReturn) int {
		if c := cmp.Compare(b.XIRR, a.XIRR); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

// Segments computes SegmentReturns for every grouping dimension.
func Segments(schemes []model.SchemeDetail, flows []model.CashFlow) map[model.Dimension][]model.SegmentReturn {
	out := make(map[model.Dimension][]model.SegmentReturn, len(model.GroupingDimensions))
	for _, d := range model.GroupingDimensions {
		out[d] = SegmentReturns(schemes, flows, d)
	}
	return out
}
