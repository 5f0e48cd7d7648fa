package api

import (
	"net/http"
	"strings"

	"blackjack_ai/internal/store"
)

type AuthHandler struct {
	Store *store.MemoryStore
}

type createSessionReq struct {
	Username string `json:"username"`
}

func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	s, err := h.Store.CreateSession(strings.TrimSpace(req.Username))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, s *store.Session) {
	writeJSON(w, http.StatusOK, s)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, s *store.Session) {
	h.Store.RemoveSession(s.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
