package server

import (
	"net/http"

	"github.com/bobmcallan/investbadge/internal/models"
	"github.com/bobmcallan/investbadge/internal/services/reputation"
)

// handleClassify handles POST /api/reputation/classify.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var alloc models.PortfolioAllocation
	if !DecodeJSON(w, r, &alloc) {
		return
	}
	t, err := reputation.Classify(alloc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"type":       t,
		"risk_score": alloc.RiskScore(),
	})
}

// handleScore handles POST /api/reputation/score.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var alloc models.PortfolioAllocation
	if !DecodeJSON(w, r, &alloc) {
		return
	}
	assessment, err := reputation.Assess(alloc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, assessment)
}
