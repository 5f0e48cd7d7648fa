package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang/glog"

	"blackjack_ai/internal/store"
)

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if tok := r.Header.Get("X-Session-Token"); tok != "" {
		return tok
	}
	return r.URL.Query().Get("token")
}

func RequireSession(ms *store.MemoryStore, next func(http.ResponseWriter, *http.Request, *store.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := ms.Authenticate(bearerToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		ms.TouchSession(s.SessionID)
		next(w, r, s)
	}
}

// requestLogger logs one line per request through glog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if glog.V(1) {
			glog.Infof("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
		}
	})
}
