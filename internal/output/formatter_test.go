package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

func buildTestComparison() *domain.ScenarioComparison {
	rows := func(pay float64) []domain.Installment {
		first := civil.Date{Year: 2019, Month: time.January, Day: 1}
		out := []domain.Installment{{Number: 0, Balance: 200, DueDate: first.AddDays(-92)}}
		for n := 1; n <= 2; n++ {
			out = append(out, domain.Installment{
				Number:         n,
				Interest:       2,
				Fee:            1,
				PrincipalPaid:  100,
				Balance:        float64(200 - 100*n),
				PaymentPreTax:  pay,
				PaymentPostTax: pay - 1,
				DueDate:        first,
				Label:          intToString(n) + "/2019",
			})
		}
		return out
	}
	summary := func(name string, total int64, pay float64) domain.ScenarioSummary {
		return domain.ScenarioSummary{
			Name:                name,
			Principal:           decimal.NewFromInt(200),
			TermInstallments:    2,
			FirstPaymentPreTax:  decimal.NewFromFloat(pay),
			FirstPaymentPostTax: decimal.NewFromFloat(pay - 1),
			TotalPaymentPostTax: decimal.NewFromInt(total),
			Regimes:             []domain.Regime{{StartInstallment: 1, OpeningBalance: 200, Terms: domain.Terms{InterestRate: 0.01, FeeRate: 0.005, TaxDeductionRate: 0.255}, Payment: 102}},
			Installments:        rows(pay),
		}
	}
	return &domain.ScenarioComparison{
		Scenarios: []domain.ScenarioSummary{
			summary("B", 220, 111),
			summary("A", 200, 101),
		},
		CheapestScenario: "A",
		Assumptions:      []string{"Installments per year: 4"},
	}
}

func TestPlanFormatter(t *testing.T) {
	out, err := PlanFormatter{}.Format(buildTestComparison())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{
		"LOAN REPAYMENT PLAN",
		"• Installments per year: 4",
		"SCENARIO 1: B",
		"term/year",
		"1/2019",
		"Cheapest scenario: A",
		"First payment post-tax: 100.00 kr",
		"never cross",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in plan output, got:\n%s", want, content)
		}
	}
}

func TestPlanFormatter_BreakEven(t *testing.T) {
	cmp := buildTestComparison()
	cmp.BreakEven = &domain.BreakEven{ScenarioA: "B", ScenarioB: "A", Installment: 2, Fraction: decimal.NewFromFloat(0.5), CumulativeAmount: decimal.NewFromInt(150)}
	out, err := PlanFormatter{}.Format(cmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "cross in installment 2") {
		t.Fatalf("expected break-even line, got:\n%s", out)
	}
}

func TestConsoleLiteFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestComparison())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	if !strings.Contains(content, "Cheapest: A") || !strings.Contains(content, "vs B") {
		t.Fatalf("expected recommendation for A, got: %s", content)
	}
}

func TestCSVSummarizerKeepsConfiguredOrder(t *testing.T) {
	out, err := CSVSummarizer{}.Format(buildTestComparison())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("csv parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records (header+2 rows), got %d", len(records))
	}
	if records[1][0] != "B" || records[2][0] != "A" {
		t.Fatalf("rows not in configured order: %v", records)
	}
	if records[2][10] != "200.00" {
		t.Fatalf("TotalPaymentPostTax = %q, want 200.00", records[2][10])
	}
}

func TestCSVDetailedExporter(t *testing.T) {
	out, err := CSVDetailedExporter{}.Format(buildTestComparison())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("csv parse: %v", err)
	}
	// header + 2 scenarios x 3 rows (including row 0)
	if len(records) != 7 {
		t.Fatalf("expected 7 records, got %d", len(records))
	}
	if got := records[2]; got[1] != "1" || got[2] != "1/2019" || got[3] != "2019-01-01" || got[8] != "111.00" {
		t.Fatalf("unexpected first installment row: %v", got)
	}
	if got := records[2][10]; got != "3.00" {
		t.Fatalf("Deductible = %q, want 3.00", got)
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestComparison())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded struct {
		Cheapest  string `json:"cheapest_scenario"`
		Scenarios []struct {
			Name         string `json:"name"`
			Installments []struct {
				DueDate string `json:"due_date"`
			} `json:"installments"`
		} `json:"scenarios"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if decoded.Cheapest != "A" || len(decoded.Scenarios) != 2 {
		t.Fatalf("unexpected json document: %s", out)
	}
	if decoded.Scenarios[0].Installments[1].DueDate != "2019-01-01" {
		t.Fatalf("due date not rendered as civil date: %s", decoded.Scenarios[0].Installments[1].DueDate)
	}
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(buildTestComparison())
	if err != nil {
		t.Fatalf("html format error: %v", err)
	}
	content := string(out)
	if !strings.HasPrefix(content, "<!DOCTYPE html>") {
		t.Fatalf("expected html document, got: %s", truncate(content, 120))
	}
	if !strings.Contains(content, "Key Assumptions") || !strings.Contains(content, "Installments per year: 4") {
		t.Fatalf("expected Key Assumptions section in HTML output")
	}
	if !strings.Contains(content, `class="best"><td>A</td>`) {
		t.Fatalf("expected cheapest scenario to be highlighted")
	}
	if !strings.Contains(content, "Scenario 2: A") {
		t.Fatalf("expected per scenario plan tables")
	}
}

func TestHTMLFormatter_DefaultAssumptions(t *testing.T) {
	cmp := buildTestComparison()
	cmp.Assumptions = nil
	out, err := HTMLFormatter{}.Format(cmp)
	if err != nil {
		t.Fatalf("html format error: %v", err)
	}
	if !strings.Contains(string(out), DefaultAssumptions[0]) {
		t.Fatalf("expected default assumptions to be rendered in HTML")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func TestFormatterAliasResolution(t *testing.T) {
	cases := map[string]string{
		"plan":         "console",
		"TABLE":        "console",
		" summary ":    "console-lite",
		"csv-detailed": "detailed-csv",
		"json-pretty":  "json",
		"detailed-csv": "detailed-csv",
		"console-lite": "console-lite",
	}
	for alias, want := range cases {
		f := GetFormatterByName(alias)
		if f == nil {
			t.Fatalf("alias %q did not resolve to a formatter", alias)
		}
		if f.Name() != want {
			t.Fatalf("alias %q resolved to %q, want %q", alias, f.Name(), want)
		}
	}
	if GetFormatterByName("pdf") != nil {
		t.Fatalf("unexpected formatter for pdf")
	}
}

func TestFileExtension(t *testing.T) {
	cases := map[string]string{"console": "txt", "summary": "txt", "csv": "csv", "detailed-csv": "csv", "json": "json", "html": "html"}
	for format, want := range cases {
		if got := FileExtension(format); got != want {
			t.Fatalf("FileExtension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var sb strings.Builder
	err := Render(&sb, &domain.ScenarioComparison{}, "definitely-not-a-format")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "Try one of:") {
		t.Fatalf("error message missing suggestions: %s", err)
	}
}

func TestFormatterFunc(t *testing.T) {
	f := FormatterFunc{ID: "names", F: func(r *domain.ScenarioComparison) ([]byte, error) {
		return []byte(r.CheapestScenario), nil
	}}
	out, err := f.Format(buildTestComparison())
	if err != nil || string(out) != "A" || f.Name() != "names" {
		t.Fatalf("FormatterFunc = %q, %v", out, err)
	}
}
