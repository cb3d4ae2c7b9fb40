package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Terms are the rate parameters of one regime of a loan. All rates are
// per installment, not annualized.
type Terms struct {
	FeeRate           float64 `json:"fee_rate"`
	InterestRate      float64 `json:"interest_rate"`
	TaxDeductionRate  float64 `json:"tax_deduction_rate"`
	GraceInstallments int     `json:"grace_installments"` // absolute, counted from installment 1
}

// Installment is one row of an amortization schedule. Index 0 holds only the
// initial balance.
type Installment struct {
	Number         int     `json:"number"`
	Fee            float64 `json:"fee"`
	Interest       float64 `json:"interest"`
	PrincipalPaid  float64 `json:"principal_paid"`
	Balance        float64 `json:"balance"`
	PaymentPreTax  float64 `json:"payment_pre_tax"`
	PaymentPostTax float64 `json:"payment_post_tax"`

	// Calendar placement, filled in by the engine when a start date is known
	DueDate civil.Date `json:"due_date"`
	Label   string     `json:"label,omitempty"`
}

// InterestAndFee returns the tax deductible part of the payment.
func (i Installment) InterestAndFee() float64 {
	return i.Interest + i.Fee
}

// Regime records one generation pass over a schedule: the first installment it
// wrote, the terms it used and the level annuity payment (interest+principal,
// fee excluded). Payment is zero when the pass never left the grace phase.
type Regime struct {
	StartInstallment int     `json:"start_installment"`
	OpeningBalance   float64 `json:"opening_balance"`
	Terms            Terms   `json:"terms"`
	Payment          float64 `json:"payment"`
}

// ScenarioSummary provides key metrics for one computed loan scenario
type ScenarioSummary struct {
	Name                string          `json:"name"`
	Principal           decimal.Decimal `json:"principal"`
	TermInstallments    int             `json:"term_installments"`
	FirstPaymentPreTax  decimal.Decimal `json:"first_payment_pre_tax"`
	FirstPaymentPostTax decimal.Decimal `json:"first_payment_post_tax"`
	TotalInterest       decimal.Decimal `json:"total_interest"`
	TotalFees           decimal.Decimal `json:"total_fees"`
	TotalPrincipalPaid  decimal.Decimal `json:"total_principal_paid"`
	TotalPaymentPreTax  decimal.Decimal `json:"total_payment_pre_tax"`
	TotalPaymentPostTax decimal.Decimal `json:"total_payment_post_tax"`
	FinalBalance        decimal.Decimal `json:"final_balance"`
	Regimes             []Regime        `json:"regimes"`
	Installments        []Installment   `json:"installments"`
}

// BreakEven describes where cumulative post-tax payments of two scenarios cross.
type BreakEven struct {
	ScenarioA string `json:"scenario_a"`
	ScenarioB string `json:"scenario_b"`

	// Installment in which the crossover happens
	Installment int `json:"installment"`

	// Fraction (0..1) of that installment at which the cumulative amounts are equal
	Fraction decimal.Decimal `json:"fraction"`

	// Cumulative post-tax amount at the crossover (equal for both scenarios)
	CumulativeAmount decimal.Decimal `json:"cumulative_amount"`

	DueDate civil.Date `json:"due_date"`
}

// ScenarioComparison holds every computed scenario plus the cross-scenario analysis.
type ScenarioComparison struct {
	Scenarios        []ScenarioSummary `json:"scenarios"`
	CheapestScenario string            `json:"cheapest_scenario"`
	BreakEven        *BreakEven        `json:"break_even,omitempty"`
	Assumptions      []string          `json:"assumptions"`
}

// Scenario returns the summary with the given name.
func (sc *ScenarioComparison) Scenario(name string) (ScenarioSummary, bool) {
	for _, s := range sc.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return ScenarioSummary{}, false
}
