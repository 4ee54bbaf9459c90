package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/models"
)

type connectRequest struct {
	Address    string                      `json:"address"`
	Allocation *models.PortfolioAllocation `json:"allocation,omitempty"`
}

type connectResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	Session   *models.SessionView `json:"session"`
}

type accountRequest struct {
	Address string `json:"address"`
}

// requireSession returns the session ID bound to the request token, writing
// 401 when the request is anonymous.
func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid := common.SessionIDFromContext(r.Context())
	if sid == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteErrorWithCode(w, http.StatusUnauthorized, "wallet not connected", "not_connected")
		return "", false
	}
	return sid, true
}

// handleSession handles /api/session: POST connects, GET reads, DELETE disconnects.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleConnect(w, r)
	case http.MethodGet:
		sid, ok := requireSession(w, r)
		if !ok {
			return
		}
		view, err := s.app.SessionService.Get(r.Context(), sid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, view)
	case http.MethodDelete:
		sid, ok := requireSession(w, r)
		if !ok {
			return
		}
		if err := s.app.SessionService.Disconnect(r.Context(), sid); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	view, err := s.app.SessionService.Connect(r.Context(), req.Address, req.Allocation)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, exp, err := signSessionToken(view.SessionID, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign session token")
		_ = s.app.SessionService.Disconnect(r.Context(), view.SessionID)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	WriteJSON(w, http.StatusCreated, connectResponse{Token: token, ExpiresAt: exp, Session: view})
}

// handleSessionAccount handles POST /api/session/account, sent when the
// wallet reports a different active account. An empty address disconnects.
func (s *Server) handleSessionAccount(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	view, err := s.app.SessionService.ChangeAccount(r.Context(), sid, req.Address)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if view == nil {
		WriteJSON(w, http.StatusOK, map[string]bool{"connected": false})
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// handleSessionRefresh handles /api/session/refresh: POST starts (or joins)
// a refresh and answers 202, GET reports the latest task.
func (s *Server) handleSessionRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		info, err := s.app.SessionService.RefreshStatus(r.Context(), sid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, info)
		return
	}

	info, err := s.app.SessionService.Refresh(r.Context(), sid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, info)
}

// handleWebSocket handles GET /api/ws. The token query parameter carries the session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sid, ok := requireSession(w, r)
	if !ok {
		return
	}
	if _, err := s.app.SessionService.Get(r.Context(), sid); err != nil {
		writeServiceError(w, err)
		return
	}
	s.app.Events.ServeWS(w, r, sid)
}
