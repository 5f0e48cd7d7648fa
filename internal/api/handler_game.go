package api

import (
	"net/http"
	"strings"

	"blackjack_ai/internal/agent"
	"blackjack_ai/internal/domain"
	"blackjack_ai/internal/store"
)

type GameHandler struct {
	Store *store.MemoryStore
}

type actionReq struct {
	Action string `json:"action"`
}

func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request, s *store.Session) {
	v, err := h.Store.NewGame(s.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *GameHandler) Hit(w http.ResponseWriter, r *http.Request, s *store.Session) {
	h.act(w, r, s, domain.Hit)
}

func (h *GameHandler) Stand(w http.ResponseWriter, r *http.Request, s *store.Session) {
	h.act(w, r, s, domain.Stand)
}

// Action takes {"action": "hit"|"stand"}.
func (h *GameHandler) Action(w http.ResponseWriter, r *http.Request, s *store.Session) {
	var req actionReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	a, err := domain.ParseAction(strings.ToLower(strings.TrimSpace(req.Action)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.act(w, r, s, a)
}

func (h *GameHandler) act(w http.ResponseWriter, r *http.Request, s *store.Session, a domain.Action) {
	v, err := h.Store.Act(s.SessionID, a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request, s *store.Session) {
	v, err := h.Store.State(s.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// AgentInfo is the read-only view of the serving agent.
type AgentInfo interface {
	Config() agent.Config
	Table() *agent.QTable
}

type AgentHandler struct {
	Agent AgentInfo
}

func (h *AgentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	cfg := h.Agent.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"states":  h.Agent.Table().Len(),
		"epsilon": cfg.Epsilon,
		"alpha":   cfg.Alpha,
		"gamma":   cfg.Gamma,
	})
}
