package output

import (
	"bytes"
	"encoding/csv"

	"github.com/annuitet/loan-calculator/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per scenario).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(results *domain.ScenarioComparison) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Principal", "TermInstallments", "Regimes", "FirstPaymentPreTax", "FirstPaymentPostTax", "TotalInterest", "TotalFees", "TotalPrincipalPaid", "TotalPaymentPreTax", "TotalPaymentPostTax", "FinalBalance"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	// configured order: the first two scenarios are the break-even pair
	for _, sc := range results.Scenarios {
		row := []string{
			sc.Name,
			sc.Principal.StringFixed(2),
			intToString(sc.TermInstallments),
			intToString(len(sc.Regimes)),
			sc.FirstPaymentPreTax.StringFixed(2),
			sc.FirstPaymentPostTax.StringFixed(2),
			sc.TotalInterest.StringFixed(2),
			sc.TotalFees.StringFixed(2),
			sc.TotalPrincipalPaid.StringFixed(2),
			sc.TotalPaymentPreTax.StringFixed(2),
			sc.TotalPaymentPostTax.StringFixed(2),
			sc.FinalBalance.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
