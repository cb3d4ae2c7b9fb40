package api

import "github.com/annuitet/loan-calculator/internal/domain"

// ScheduleRequest asks for the plan of a single scenario. Global assumption
// keys missing from the body keep their defaults.
type ScheduleRequest struct {
	GlobalAssumptions *domain.GlobalAssumptions `json:"global_assumptions,omitempty"`
	Scenario          domain.Scenario           `json:"scenario"`
}

// FormatsResponse lists the report formats accepted by /api/reports/{format}.
type FormatsResponse struct {
	Formats []string `json:"formats"`
	Aliases []string `json:"aliases"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
