package analytics

import (
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/xirr"
)

// Comparison pairs each benchmark entry whose ISIN is in schemes with the investor's XIRR on that ISIN's
// flows. Alpha is XIRR minus the fund CAGR. Snapshot order is kept.
func Comparison(snap *model.Snapshot, schemes []model.SchemeDetail, flows []model.CashFlow) []model.ComparisonRow {
	out := []model.ComparisonRow{}
	if snap == nil {
		return out
	}
	filtered := ISINSet(schemes)
	byISIN := FlowsByISIN(flows)

	for _, p := range snap.PerformanceComparison {
		if _, ok := filtered[p.ISIN]; !ok {
			continue
		}
		rate := xirr.Solve(byISIN[p.ISIN])
		out = append(out, model.ComparisonRow{
			ISIN:         p.ISIN,
			Fund:         p.Fund,
			Category:     p.Category,
			Years:        p.Years,
			FundCAGR:     p.FundCAGR,
			InvestorXIRR: rate,
			Alpha:        rate - p.FundCAGR,
		})
	}
	return out
}
