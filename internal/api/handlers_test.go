package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/annuitet/loan-calculator/internal/calculation"
	"github.com/annuitet/loan-calculator/internal/config"
	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := NewHandler(calculation.NewCalculationEngine(), zaptest.NewLogger(t))
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func exampleBody(t *testing.T) string {
	t.Helper()
	b, err := json.Marshal(config.NewInputParser().CreateExampleConfiguration())
	require.NoError(t, err)
	return string(b)
}

func TestHealthAndFormats(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/formats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var formats FormatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&formats))
	assert.Contains(t, formats.Formats, "console")
	assert.Contains(t, formats.Formats, "detailed-csv")
	assert.Contains(t, formats.Aliases, "plan")
}

func TestCreateSchedule(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"global_assumptions": {"start_date": "2019-01-01"},
		"scenario": {
			"name": "plain",
			"loan": {"principal": 1000000, "term_installments": 120, "interest_rate": 0.0025}
		}
	}`
	resp := post(t, srv.URL+"/api/schedules", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary domain.ScenarioSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, "plain", summary.Name)
	require.Len(t, summary.Installments, 121)
	require.Len(t, summary.Regimes, 1)
	assert.InDelta(t, 9656.0745, summary.Regimes[0].Payment, 1e-3)
	assert.InDelta(t, 0.255, summary.Regimes[0].Terms.TaxDeductionRate, 1e-12)
	assert.Equal(t, "1/2019", summary.Installments[1].Label)
	assert.InDelta(t, 0, summary.FinalBalance.InexactFloat64(), 1e-4)
}

func TestCreateSchedule_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{"malformed json", `{"scenario":`, http.StatusBadRequest, ""},
		{"validation", `{"scenario": {"name": "x", "loan": {"principal": 0, "term_installments": 4}}}`, http.StatusUnprocessableEntity, "principal must be positive"},
		{"degenerate rate", `{"scenario": {"name": "x", "loan": {"principal": 100, "term_installments": 4}}}`, http.StatusUnprocessableEntity, "degenerate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/schedules", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var e ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.NotEmpty(t, e.Error)
			if tt.detail != "" {
				assert.Contains(t, e.Details, tt.detail)
			}
		})
	}
}

func TestCreateComparison(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/api/comparisons", exampleBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results domain.ScenarioComparison
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.Equal(t, "F10", results.CheapestScenario)
	require.Len(t, results.Scenarios, 2)
	require.NotNil(t, results.BreakEven)
	assert.Equal(t, 46, results.BreakEven.Installment)
}

func TestCreateComparison_NoScenarios(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/api/comparisons", `{"scenarios": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateReport(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/api/reports/csv", exampleBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "F5,"))

	resp = post(t, srv.URL+"/api/reports/plan", exampleBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))

	resp = post(t, srv.URL+"/api/reports/pdf", exampleBody(t))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/comparisons", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
