package server

import (
	"net/http"

	"github.com/bobmcallan/investbadge/internal/common"
)

// viewerFollowing returns the follow list of the requesting session, or nil
// for anonymous viewers and sessions that have ended.
func (s *Server) viewerFollowing(r *http.Request) []string {
	sid := common.SessionIDFromContext(r.Context())
	if sid == "" {
		return nil
	}
	following, err := s.app.SessionService.Following(r.Context(), sid)
	if err != nil {
		return nil
	}
	return following
}

// handleLeaderboard handles GET /api/leaderboard?type=.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	entries, err := s.app.LeaderboardService.List(r.Context(), r.URL.Query().Get("type"), s.viewerFollowing(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"investors": entries,
		"count":     len(entries),
	})
}

// handleLeaderboardStats handles GET /api/leaderboard/stats.
func (s *Server) handleLeaderboardStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	stats, err := s.app.LeaderboardService.Stats(r.Context(), s.viewerFollowing(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// handleInvestorDetails handles GET /api/leaderboard/{id}.
func (s *Server) handleInvestorDetails(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	details, err := s.app.LeaderboardService.Details(r.Context(), id, s.viewerFollowing(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, details)
}

// handleToggleFollow handles POST /api/leaderboard/{id}/follow.
func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}
	following, err := s.app.SessionService.ToggleFollow(r.Context(), sid, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"investor_id": id,
		"following":   following,
	})
}
