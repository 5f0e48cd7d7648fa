package api

import (
	"expvar"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blackjack_ai/internal/store"
)

type Options struct {
	// StaticDir is served at / when it exists.
	StaticDir string
	// DebugVars exposes expvar counters at /debug/vars. Off by default since
	// the router has no admin auth.
	DebugVars bool
}

// NewRouter wires the session, game and agent endpoints.
func NewRouter(ms *store.MemoryStore, ai AgentInfo, opts Options) http.Handler {
	authH := &AuthHandler{Store: ms}
	gameH := &GameHandler{Store: ms}
	agentH := &AgentHandler{Agent: ai}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	if opts.DebugVars {
		r.Handle("/debug/vars", expvar.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", authH.CreateSession)
		r.Get("/session/me", RequireSession(ms, authH.Me))
		r.Post("/session/logout", RequireSession(ms, authH.Logout))

		r.Post("/game/new", RequireSession(ms, gameH.NewGame))
		r.Post("/game/hit", RequireSession(ms, gameH.Hit))
		r.Post("/game/stand", RequireSession(ms, gameH.Stand))
		r.Post("/game/action", RequireSession(ms, gameH.Action))
		r.Get("/game/state", RequireSession(ms, gameH.GetState))

		r.Get("/agent", agentH.Summary)
	})

	if fi, err := os.Stat(opts.StaticDir); opts.StaticDir != "" && err == nil && fi.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}
	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
