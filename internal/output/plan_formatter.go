package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// PlanFormatter renders the full repayment plan of every scenario followed by
// the comparison section.
type PlanFormatter struct{}

func (p PlanFormatter) Name() string { return "console" }

func (p PlanFormatter) Format(results *domain.ScenarioComparison) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, "LOAN REPAYMENT PLAN")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range assumptionsOf(results.Assumptions) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	for i, scenario := range results.Scenarios {
		fmt.Fprintf(&buf, "SCENARIO %d: %s\n", i+1, scenario.Name)
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		fmt.Fprintf(&buf, "Principal:          %s\n", FormatCurrency(scenario.Principal))
		fmt.Fprintf(&buf, "Installments:       %d\n", scenario.TermInstallments)
		writeRegimes(&buf, scenario.Regimes)
		fmt.Fprintln(&buf)
		writePlanTable(&buf, scenario.Installments)
		fmt.Fprintln(&buf)
		writeTotals(&buf, scenario)
		fmt.Fprintln(&buf)
	}

	writeComparison(&buf, results)
	return buf.Bytes(), nil
}

func writeRegimes(buf *bytes.Buffer, regimes []domain.Regime) {
	for _, r := range regimes {
		fmt.Fprintf(buf, "From installment %-4d interest %s  fee %s  tax deduction %s  grace to %d  payment %s\n",
			r.StartInstallment,
			FormatPercentage(decimal.NewFromFloat(r.Terms.InterestRate).Mul(decimalHundred)),
			FormatPercentage(decimal.NewFromFloat(r.Terms.FeeRate).Mul(decimalHundred)),
			FormatPercentage(decimal.NewFromFloat(r.Terms.TaxDeductionRate).Mul(decimalHundred)),
			r.Terms.GraceInstallments,
			formatFloat(r.Payment),
		)
	}
}

func writePlanTable(buf *bytes.Buffer, rows []domain.Installment) {
	fmt.Fprintf(buf, "%-10s %18s %18s %14s %16s\n", "term/year", "payment pre-tax", "payment post-tax", "principal", "balance")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	for _, r := range rows {
		if r.Number == 0 {
			continue
		}
		label := r.Label
		if label == "" {
			label = intToString(r.Number)
		}
		fmt.Fprintf(buf, "%-10s %18s %18s %14s %16s\n",
			label,
			formatAmount(r.PaymentPreTax),
			formatAmount(r.PaymentPostTax),
			formatAmount(r.PrincipalPaid),
			formatAmount(r.Balance),
		)
	}
}

func writeTotals(buf *bytes.Buffer, sc domain.ScenarioSummary) {
	fmt.Fprintln(buf, "TOTALS:")
	fmt.Fprintf(buf, "  First payment (pre-tax):  %s\n", FormatCurrency(sc.FirstPaymentPreTax))
	fmt.Fprintf(buf, "  First payment (post-tax): %s\n", FormatCurrency(sc.FirstPaymentPostTax))
	fmt.Fprintf(buf, "  Interest:                 %s\n", FormatCurrency(sc.TotalInterest))
	fmt.Fprintf(buf, "  Fees:                     %s\n", FormatCurrency(sc.TotalFees))
	fmt.Fprintf(buf, "  Principal repaid:         %s\n", FormatCurrency(sc.TotalPrincipalPaid))
	fmt.Fprintf(buf, "  Payments (pre-tax):       %s\n", FormatCurrency(sc.TotalPaymentPreTax))
	fmt.Fprintf(buf, "  Payments (post-tax):      %s\n", FormatCurrency(sc.TotalPaymentPostTax))
	fmt.Fprintf(buf, "  Final balance:            %s\n", FormatCurrency(sc.FinalBalance))
}

func writeComparison(buf *bytes.Buffer, results *domain.ScenarioComparison) {
	rec := AnalyzeScenarios(results)
	if rec.ScenarioName == "" {
		return
	}
	fmt.Fprintln(buf, "SUMMARY & COMPARISON")
	fmt.Fprintln(buf, "====================")
	fmt.Fprintf(buf, "Cheapest scenario: %s (%s post-tax)\n", rec.ScenarioName, FormatCurrency(rec.TotalPostTax))
	if sc, ok := results.Scenario(rec.ScenarioName); ok {
		fmt.Fprintf(buf, "First payment post-tax: %s\n", FormatCurrency(sc.FirstPaymentPostTax))
	}
	if rec.RunnerUpName != "" {
		fmt.Fprintf(buf, "Saves %s (%s) compared to %s\n", FormatCurrency(rec.Savings), FormatPercentage(rec.PercentageSavings), rec.RunnerUpName)
	}
	if be := results.BreakEven; be != nil {
		fmt.Fprintf(buf, "Cumulative post-tax payments of %s and %s cross in installment %d (%s, fraction %s) at %s\n",
			be.ScenarioA, be.ScenarioB, be.Installment, be.DueDate, be.Fraction.StringFixed(2), FormatCurrency(be.CumulativeAmount))
	} else if len(results.Scenarios) >= 2 {
		fmt.Fprintf(buf, "Cumulative post-tax payments of %s and %s never cross\n", results.Scenarios[0].Name, results.Scenarios[1].Name)
	}
}
