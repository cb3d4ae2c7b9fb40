package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/annuitet/loan-calculator/internal/calculation"
	"github.com/annuitet/loan-calculator/internal/config"
	"github.com/annuitet/loan-calculator/internal/domain"
	"github.com/annuitet/loan-calculator/internal/output"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the loan calculator over HTTP. It holds no state between
// requests; every call builds its schedules from the request body.
type Handler struct {
	Engine *calculation.CalculationEngine
	Parser *config.InputParser

	logger *zap.Logger
}

// NewHandler creates a handler around the engine. A nil logger disables logging.
func NewHandler(engine *calculation.CalculationEngine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Engine: engine,
		Parser: config.NewInputParser(),
		logger: logger.Named("api"),
	}
}

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListFormats returns the report formats and their aliases.
func (h *Handler) ListFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FormatsResponse{
		Formats: output.AvailableFormatterNames(),
		Aliases: output.AvailableFormatAliases(),
	})
}

// GetExample returns the example configuration accepted by /api/comparisons.
func (h *Handler) GetExample(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Parser.CreateExampleConfiguration())
}

// CreateSchedule computes the plan of one scenario.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ga := domain.DefaultGlobalAssumptions()
	req := ScheduleRequest{GlobalAssumptions: &ga}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg := &domain.Configuration{
		GlobalAssumptions: domain.DefaultGlobalAssumptions(),
		Scenarios:         []domain.Scenario{req.Scenario},
	}
	if req.GlobalAssumptions != nil {
		cfg.GlobalAssumptions = *req.GlobalAssumptions
	}
	if err := h.Parser.ValidateConfiguration(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid scenario", err)
		return
	}

	summary, err := h.Engine.RunScenario(r.Context(), cfg, &cfg.Scenarios[0])
	if err != nil {
		h.writeCalculationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CreateComparison runs every scenario of a configuration.
func (h *Handler) CreateComparison(w http.ResponseWriter, r *http.Request) {
	results, ok := h.runConfiguration(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// CreateReport runs a configuration and renders it with the formatter named in the path.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if output.GetFormatterByName(format) == nil {
		writeError(w, http.StatusNotFound, "Unknown report format", errors.New(format))
		return
	}

	results, ok := h.runConfiguration(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.Render(&buf, results, format); err != nil {
		h.logger.Error("failed to render report", zap.String("format", format), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to render report", err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) runConfiguration(w http.ResponseWriter, r *http.Request) (*domain.ScenarioComparison, bool) {
	cfg := domain.Configuration{GlobalAssumptions: domain.DefaultGlobalAssumptions()}
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	if err := h.Parser.ValidateConfiguration(&cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid configuration", err)
		return nil, false
	}

	results, err := h.Engine.RunScenarios(r.Context(), &cfg)
	if err != nil {
		h.writeCalculationError(w, err)
		return nil, false
	}
	return results, true
}

// writeCalculationError maps schedule errors to 422 and everything else to 500.
func (h *Handler) writeCalculationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calculation.ErrInvalidParameter),
		errors.Is(err, calculation.ErrDegenerateRate),
		errors.Is(err, calculation.ErrIndexOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "Calculation failed", err)
	default:
		h.logger.Error("calculation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Calculation failed", err)
	}
}

func contentType(format string) string {
	switch output.FileExtension(format) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
