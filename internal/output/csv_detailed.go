package output

import (
	"bytes"
	"encoding/csv"

	"github.com/annuitet/loan-calculator/internal/domain"
)

// CSVDetailedExporter writes every installment row of every scenario.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(results *domain.ScenarioComparison) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Installment", "Label", "DueDate", "Fee", "Interest", "PrincipalPaid", "Balance", "PaymentPreTax", "PaymentPostTax", "Deductible"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, sc := range results.Scenarios {
		for _, r := range sc.Installments {
			row := []string{
				sc.Name,
				intToString(r.Number),
				r.Label,
				r.DueDate.String(),
				formatFloat(r.Fee),
				formatFloat(r.Interest),
				formatFloat(r.PrincipalPaid),
				formatFloat(r.Balance),
				formatFloat(r.PaymentPreTax),
				formatFloat(r.PaymentPostTax),
				formatFloat(r.InterestAndFee()),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
