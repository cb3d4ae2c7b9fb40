package output

import (
	"sort"

	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// Recommendation encapsulates the selection result of the cheapest scenario.
type Recommendation struct {
	ScenarioName      string
	TotalPostTax      decimal.Decimal
	RunnerUpName      string
	Savings           decimal.Decimal // vs. the runner-up
	PercentageSavings decimal.Decimal
}

// AnalyzeScenarios ranks scenarios by total post-tax payments over the life of
// the loan. Ties keep the configured order.
func AnalyzeScenarios(results *domain.ScenarioComparison) Recommendation {
	type ranked struct {
		name  string
		total decimal.Decimal
	}
	var ranks []ranked
	for _, sc := range results.Scenarios {
		ranks = append(ranks, ranked{sc.Name, sc.TotalPaymentPostTax})
	}
	if len(ranks) == 0 {
		return Recommendation{}
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].total.LessThan(ranks[j].total) })

	best := ranks[0]
	rec := Recommendation{ScenarioName: best.name, TotalPostTax: best.total}
	if len(ranks) > 1 {
		runnerUp := ranks[1]
		rec.RunnerUpName = runnerUp.name
		rec.Savings = runnerUp.total.Sub(best.total)
		if !runnerUp.total.IsZero() {
			rec.PercentageSavings = rec.Savings.Div(runnerUp.total).Mul(decimalHundred)
		}
	}
	return rec
}
