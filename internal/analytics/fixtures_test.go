package analytics

import (
	"time"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

func scheme(isin, name, category, amc string, current float64) model.SchemeDetail {
	return model.SchemeDetail{
		ISIN:          isin,
		FundName:      name,
		Category:      category,
		AMC:           amc,
		Sector:        "Diversified",
		Cap:           "Large",
		ActivityState: "Active",
		CurrentVal:    current,
		InvestedVal:   current * 0.8,
	}
}

func cf(isin string, y int, m time.Month, d int, amount float64) model.CashFlow {
	return model.CashFlow{ISIN: isin, Date: model.NewDate(y, m, d), Amount: amount}
}

// sampleSnapshot has three live schemes and one fully redeemed scheme.
func sampleSnapshot() *model.Snapshot {
	closed := scheme("INF004", "Delta Liquid Fund", "Debt", "Delta AMC", 0)
	closed.ActivityState = "Closed"
	closed.Sector = ""
	closed.Cap = ""

	return &model.Snapshot{
		SchemeDetails: []model.SchemeDetail{
			scheme("INF001", "Alpha Bluechip Fund", "Equity", "Alpha AMC", 50000),
			scheme("INF002", "Beta Flexi Cap Fund", "Equity", "Beta AMC", 30000),
			scheme("INF003", "Alpha Gilt Fund", "Debt", "Alpha AMC", 20000),
			closed,
		},
		CashFlows: []model.CashFlow{
			cf("INF001", 2021, time.January, 1, -40000),
			cf("INF001", 2022, time.January, 1, 50000),
			cf("INF002", 2021, time.June, 1, -25000),
			cf("INF002", 2022, time.June, 1, 30000),
			cf("INF003", 2021, time.March, 1, -19000),
			cf("INF003", 2022, time.March, 1, 20000),
			cf("INF004", 2020, time.January, 1, -10000),
			cf("INF004", 2020, time.December, 1, 10300),
		},
	}
}
