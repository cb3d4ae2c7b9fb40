package calculation

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/annuitet/loan-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// CalculationEngine turns configured loan scenarios into schedules and summaries
type CalculationEngine struct {
	Debug  bool // log every installment row
	Logger Logger
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{Logger: NopLogger{}}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// BuildSchedule constructs the schedule of a scenario and applies its
// refinancings in installment order.
func (ce *CalculationEngine) BuildSchedule(ga domain.GlobalAssumptions, scenario *domain.Scenario) (*LoanSchedule, error) {
	loan := scenario.Loan
	terms := loan.Rates.Terms(ga, loan.GraceInstallments)

	schedule, err := NewLoanSchedule(loan.Principal.InexactFloat64(), loan.TermInstallments, terms)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	ce.Logger.Debugf("scenario %q: %d installments, interest %g, fee %g, grace %d",
		scenario.Name, loan.TermInstallments, terms.InterestRate, terms.FeeRate, terms.GraceInstallments)

	refinancings, err := ce.resolveRefinancings(ga, scenario.Refinancings)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	for _, rf := range refinancings {
		rfTerms := rf.Rates.Terms(ga, rf.GraceInstallments)
		if err := schedule.Recompute(rf.AtInstallment, rfTerms); err != nil {
			return nil, fmt.Errorf("scenario %q: refinancing at installment %d: %w", scenario.Name, rf.AtInstallment, err)
		}
		ce.Logger.Infof("scenario %q: refinanced after installment %d (interest %g, fee %g)",
			scenario.Name, rf.AtInstallment, rfTerms.InterestRate, rfTerms.FeeRate)
	}
	return schedule, nil
}

// resolveRefinancings converts date based events to installment numbers and
// orders them. Events at the same installment keep their configured order.
func (ce *CalculationEngine) resolveRefinancings(ga domain.GlobalAssumptions, events []domain.Refinancing) ([]domain.Refinancing, error) {
	resolved := make([]domain.Refinancing, len(events))
	copy(resolved, events)
	for i := range resolved {
		if resolved[i].AtDate == nil {
			continue
		}
		n, err := dateutil.InstallmentsDueBy(ce.startDate(ga), *resolved[i].AtDate, ga.InstallmentsPerYear)
		if err != nil {
			return nil, err
		}
		resolved[i].AtInstallment = n
	}
	sort.SliceStable(resolved, func(i, j int) bool { return resolved[i].AtInstallment < resolved[j].AtInstallment })
	return resolved, nil
}

// RunScenario calculates one loan scenario and summarizes it
func (ce *CalculationEngine) RunScenario(ctx context.Context, config *domain.Configuration, scenario *domain.Scenario) (*domain.ScenarioSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schedule, err := ce.BuildSchedule(config.GlobalAssumptions, scenario)
	if err != nil {
		return nil, err
	}

	rows := schedule.Installments()
	if err := ce.placeOnCalendar(config.GlobalAssumptions, rows); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	if ce.Debug {
		for _, r := range rows[1:] {
			ce.Logger.Debugf("%s %-8s pre-tax %.2f post-tax %.2f principal %.2f balance %.2f",
				scenario.Name, r.Label, r.PaymentPreTax, r.PaymentPostTax, r.PrincipalPaid, r.Balance)
		}
	}

	summary := summarize(scenario, rows)
	summary.Regimes = schedule.Regimes()
	return summary, nil
}

func summarize(scenario *domain.Scenario, rows []domain.Installment) *domain.ScenarioSummary {
	summary := &domain.ScenarioSummary{
		Name:             scenario.Name,
		Principal:        scenario.Loan.Principal,
		TermInstallments: scenario.Loan.TermInstallments,
		Installments:     rows,
	}

	for _, r := range rows[1:] {
		summary.TotalInterest = summary.TotalInterest.Add(decimal.NewFromFloat(r.Interest))
		summary.TotalFees = summary.TotalFees.Add(decimal.NewFromFloat(r.Fee))
		summary.TotalPrincipalPaid = summary.TotalPrincipalPaid.Add(decimal.NewFromFloat(r.PrincipalPaid))
		summary.TotalPaymentPreTax = summary.TotalPaymentPreTax.Add(decimal.NewFromFloat(r.PaymentPreTax))
		summary.TotalPaymentPostTax = summary.TotalPaymentPostTax.Add(decimal.NewFromFloat(r.PaymentPostTax))
	}
	if len(rows) > 1 {
		summary.FirstPaymentPreTax = decimal.NewFromFloat(rows[1].PaymentPreTax)
		summary.FirstPaymentPostTax = decimal.NewFromFloat(rows[1].PaymentPostTax)
	}
	summary.FinalBalance = decimal.NewFromFloat(rows[len(rows)-1].Balance)
	return summary
}

// placeOnCalendar fills due dates and "term/year" labels.
func (ce *CalculationEngine) placeOnCalendar(ga domain.GlobalAssumptions, rows []domain.Installment) error {
	first := ce.startDate(ga)
	for i := range rows {
		due, err := dateutil.InstallmentDate(first, rows[i].Number, ga.InstallmentsPerYear)
		if err != nil {
			return err
		}
		rows[i].DueDate = due
		if rows[i].Number > 0 {
			rows[i].Label = dateutil.InstallmentLabel(due, ga.InstallmentsPerYear)
		}
	}
	return nil
}

func (ce *CalculationEngine) startDate(ga domain.GlobalAssumptions) civil.Date {
	if ga.StartDate == (civil.Date{}) {
		return dateutil.FirstOfNextMonth(nowFunc())
	}
	return ga.StartDate
}

// RunScenarios runs all scenarios and returns a comparison
func (ce *CalculationEngine) RunScenarios(ctx context.Context, config *domain.Configuration) (*domain.ScenarioComparison, error) {
	scenarios := make([]domain.ScenarioSummary, len(config.Scenarios))
	for i := range config.Scenarios {
		summary, err := ce.RunScenario(ctx, config, &config.Scenarios[i])
		if err != nil {
			return nil, fmt.Errorf("RunScenario failed: %w", err)
		}
		scenarios[i] = *summary
	}

	comparison := &domain.ScenarioComparison{
		Scenarios:   scenarios,
		Assumptions: config.GlobalAssumptions.GenerateAssumptions(),
	}
	comparison.CheapestScenario = cheapestScenario(scenarios)

	if len(scenarios) >= 2 {
		be, err := CalculateCumulativeBreakEven(scenarios[0].Installments, scenarios[1].Installments)
		if err != nil {
			ce.Logger.Warnf("break-even between %q and %q skipped: %v", scenarios[0].Name, scenarios[1].Name, err)
		} else if be != nil {
			be.ScenarioA = scenarios[0].Name
			be.ScenarioB = scenarios[1].Name
			comparison.BreakEven = be
		}
	}

	return comparison, nil
}

// cheapestScenario returns the scenario with the lowest total post-tax
// payments; ties go to the earlier scenario.
func cheapestScenario(scenarios []domain.ScenarioSummary) string {
	best := -1
	for i, sc := range scenarios {
		if best < 0 || sc.TotalPaymentPostTax.LessThan(scenarios[best].TotalPaymentPostTax) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return scenarios[best].Name
}
