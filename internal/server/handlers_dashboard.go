package server

import (
	"net/http"
)

// handleDashboard handles GET /api/dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}
	view, err := s.app.SessionService.Get(r.Context(), sid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	overview, err := s.app.DashboardService.Overview(r.Context(), view)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, overview)
}

// handleAllocationChart handles GET /api/dashboard/allocation.png.
func (s *Server) handleAllocationChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}
	view, err := s.app.SessionService.Get(r.Context(), sid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	png, err := s.app.DashboardService.AllocationChart(r.Context(), view.Allocation)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sid).Msg("Allocation chart failed")
		writeServiceError(w, err)
		return
	}
	WritePNG(w, png)
}

// handleBadgeMetadata handles GET /api/badges/{id}.
func (s *Server) handleBadgeMetadata(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	profile, err := s.app.LeaderboardService.Profile(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.app.DashboardService.Metadata(profile))
}

// handleBadgeImage handles GET /api/badges/{id}/image.png.
func (s *Server) handleBadgeImage(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	profile, err := s.app.LeaderboardService.Profile(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	png, err := s.app.DashboardService.BadgeImage(r.Context(), profile)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", id).Msg("Badge image failed")
		writeServiceError(w, err)
		return
	}
	WritePNG(w, png)
}
