package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/nyashahama/investgpt-backend/internal/planning"
)

// ─── RESPONSE TYPES ───────────────────────────────────────────────────────────

type planResponse struct {
	Result    string             `json:"result"`
	Prompt    string             `json:"prompt"`
	RiskLevel planning.RiskLevel `json:"riskLevel"`
}

type riskResponse struct {
	TimeHorizonYears int                `json:"timeHorizonYears"`
	RiskLevel        planning.RiskLevel `json:"riskLevel"`
}

type goalsResponse struct {
	Goals []planning.Goal `json:"goals"`
}

// ─── POST /api/plan ───────────────────────────────────────────────────────────

// handlePlan builds the prompt from structured form inputs and generates.
//
// An omitted riskLevel defaults to the recommendation for timeHorizonYears.
// Returns 200 {"result", "prompt", "riskLevel"}, 400 on invalid inputs, and
// 500 {"error": <reason>} when generation fails.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var in planning.UserInputs
	if !decode(w, r, &in) {
		return
	}

	in = in.WithDefaultRisk()
	if err := in.Validate(); err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	prompt := s.goals.BuildPrompt(in)
	text, err := s.generate(w, r, prompt, in)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusOK, planResponse{
		Result:    text,
		Prompt:    prompt,
		RiskLevel: in.RiskLevel,
	})
}

// ─── GET /api/risk ────────────────────────────────────────────────────────────

// handleRecommendRisk returns the risk level suggested for ?years=N.
func (s *Server) handleRecommendRisk(w http.ResponseWriter, r *http.Request) {
	years, err := strconv.Atoi(r.URL.Query().Get("years"))
	if err != nil || years < planning.MinTimeHorizonYears || years > planning.MaxTimeHorizonYears {
		respondErr(w, http.StatusBadRequest, fmt.Sprintf(
			"years must be an integer between %d and %d",
			planning.MinTimeHorizonYears, planning.MaxTimeHorizonYears))
		return
	}

	respond(w, http.StatusOK, riskResponse{
		TimeHorizonYears: years,
		RiskLevel:        planning.Recommend(years),
	})
}

// ─── GET /api/goals ───────────────────────────────────────────────────────────

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, goalsResponse{Goals: s.goals.Goals()})
}
