// Package xirr computes the annualised internal rate of return of an irregular cash-flow schedule.
package xirr

import (
	"math"
	"slices"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

const (
	// InitialGuess is the starting rate (10%) for the Newton-Raphson iteration.
	InitialGuess = 0.1
	// MaxIterations caps the number of Newton steps.
	MaxIterations = 20
	// Tolerance is the absolute NPV below which the rate is accepted.
	Tolerance = 1e-6
	// DaysPerYear converts day offsets to fractional years.
	DaysPerYear = 365.25
)

// Result is the outcome of a solve.
// Rate is in percent. Converged is false when the iteration cap was hit or a step left the finite range;
// Rate then holds the last finite iterate.
type Result struct {
	Rate       float64
	Converged  bool
	Iterations int
}

type term struct {
	t float64
	v float64
}

// Solve returns the XIRR of flows in percent.
//
// Fewer than two flows yield 0. The result is never NaN or infinite: a non-finite Newton step stops the
// iteration and keeps the previous rate. Callers that need to know whether the iteration converged
// should use SolveDetailed.
//
// Example:
//
//	rate := xirr.Solve([]model.CashFlow{
//	    {Date: model.NewDate(2021, 1, 1), Amount: -100000},
//	    {Date: model.NewDate(2022, 1, 1), Amount: 110000},
//	}) // ~10.0
func Solve(flows []model.CashFlow) float64 {
	return SolveDetailed(flows).Rate
}

// SolveDetailed runs the same iteration as Solve and reports convergence.
//
// The flows are stably sorted by date on a copy, so the caller's slice is untouched and ties keep their
// input order. Time offsets are measured in years of 365.25 days from the earliest flow.
//
// Iteration:
//   - f(r)  = Σ v / (1+r)^t
//   - f'(r) = Σ -t·v / (1+r)^(t+1)
//   - stop when |f(r)| < Tolerance, after MaxIterations, or when the next rate is NaN or ±Inf
func SolveDetailed(flows []model.CashFlow) Result {
	if len(flows) < 2 {
		return Result{}
	}

	terms := toTerms(flows)

	rate := InitialGuess
	for i := 0; i < MaxIterations; i++ {
		f, df := npv(terms, rate)
		if math.Abs(f) < Tolerance {
			return Result{Rate: rate * 100, Converged: true, Iterations: i}
		}
		next := rate - f/df
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return Result{Rate: rate * 100, Iterations: i}
		}
		rate = next
	}

	// The last step may still have landed inside the tolerance.
	f, _ := npv(terms, rate)
	return Result{
		Rate:       rate * 100,
		Converged:  math.Abs(f) < Tolerance,
		Iterations: MaxIterations,
	}
}

func toTerms(flows []model.CashFlow) []term {
	sorted := slices.Clone(flows)
	slices.SortStableFunc(sorted, func(a, b model.CashFlow) int {
		return a.Date.Compare(b.Date.Time)
	})

	first := sorted[0].Date
	terms := make([]term, len(sorted))
	for i, cf := range sorted {
		terms[i] = term{
			t: cf.Date.DaysSince(first) / DaysPerYear,
			v: cf.Amount,
		}
	}
	return terms
}

// npv evaluates f and f' at rate.
func npv(terms []term, rate float64) (f, df float64) {
	for _, tm := range terms {
		denom := math.Pow(1+rate, tm.t)
		f += tm.v / denom
		df -= tm.t * tm.v / (denom * (1 + rate))
	}
	return f, df
}
