package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/golang/glog"

	"blackjack_ai/internal/domain"
	"blackjack_ai/internal/store"
	"blackjack_ai/internal/table"
)

const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("write response: %v", err)
	}
}

// readJSON decodes the request body into v. An empty body leaves v as is.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeError maps store, table and domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrNoActiveGame),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, store.ErrUsernameRequired):
		status = http.StatusBadRequest
	case errors.Is(err, table.ErrRoundOver):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		glog.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, status, map[string]any{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
