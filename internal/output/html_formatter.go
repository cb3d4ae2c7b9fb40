package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/annuitet/loan-calculator/internal/domain"
)

// HTMLFormatter produces a standalone HTML report with one plan table per scenario.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":   FormatCurrency,
	"pct":    FormatPercentage,
	"amount": formatAmount,
	"add":    func(i, j int) int { return i + j },
	"rows": func(items []domain.Installment) []domain.Installment {
		if len(items) == 0 {
			return items
		}
		return items[1:]
	},
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(results *domain.ScenarioComparison) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*domain.ScenarioComparison
		Recommendation Recommendation
		Assumptions    []string
	}{results, AnalyzeScenarios(results), assumptionsOf(results.Assumptions)}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
