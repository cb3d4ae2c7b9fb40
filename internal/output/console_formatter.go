package output

import (
	"bytes"
	"fmt"

	"github.com/annuitet/loan-calculator/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(results *domain.ScenarioComparison) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "LOAN SCENARIO SUMMARY")
	fmt.Fprintln(&buf, "================================")
	for _, sc := range results.Scenarios {
		fmt.Fprintf(&buf, "%s: Principal=%s Installments=%d Refinancings=%d\n",
			sc.Name,
			FormatCurrency(sc.Principal),
			sc.TermInstallments,
			len(sc.Regimes)-1,
		)
		fmt.Fprintf(&buf, "  FirstPayment=%s FirstPaymentPostTax=%s TotalPostTax=%s FinalBalance=%s\n",
			FormatCurrency(sc.FirstPaymentPreTax),
			FormatCurrency(sc.FirstPaymentPostTax),
			FormatCurrency(sc.TotalPaymentPostTax),
			FormatCurrency(sc.FinalBalance),
		)
	}
	rec := AnalyzeScenarios(results)
	if rec.ScenarioName != "" {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Cheapest: %s", rec.ScenarioName)
		if rec.RunnerUpName != "" {
			fmt.Fprintf(&buf, " (Δ %s / %s vs %s)", FormatCurrency(rec.Savings), FormatPercentage(rec.PercentageSavings), rec.RunnerUpName)
		}
		fmt.Fprintln(&buf)
	}
	if be := results.BreakEven; be != nil {
		fmt.Fprintf(&buf, "Break-even: installment %d (%s)\n", be.Installment, be.DueDate)
	}
	return buf.Bytes(), nil
}
