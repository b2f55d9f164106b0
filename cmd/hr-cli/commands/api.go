package commands

import (
	"context"
	"encoding/json"
	"errors"
	"hrtools/lib/scrapers/horsereality/core"
	"hrtools/lib/scrapers/horsereality/view"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type horseGetter interface {
	GetHorse(ctx context.Context, lifenumber int) (view.Horse, error)
}

type sessionController interface {
	State() core.State
	Rollover(ctx context.Context) error
}

type stateResponse struct {
	State      string     `json:"state"`
	Until      *time.Time `json:"until,omitempty"`
	Generation uint64     `json:"generation"`
}

type errorResponse struct {
	Error string `json:"error"`
	Gate  string `json:"gate,omitempty"`
}

func writeJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrRolloverRequired):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotInitialized), errors.Is(err, core.ErrRateLimited):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	slog.WarnContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "err", err)
	gate, _ := core.RolloverGate(err)
	writeJson(w, status, errorResponse{Error: err.Error(), Gate: gate})
}

func newApiHandler(horses horseGetter, session sessionController) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /horses/{lifenumber}", func(w http.ResponseWriter, r *http.Request) {
		lifenumber, err := strconv.Atoi(r.PathValue("lifenumber"))
		if err != nil || lifenumber <= 0 {
			writeJson(w, http.StatusBadRequest, errorResponse{Error: "lifenumber must be a positive integer"})
			return
		}
		horse, err := horses.GetHorse(r.Context(), lifenumber)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJson(w, http.StatusOK, horse)
	})

	mux.HandleFunc("GET /state", func(w http.ResponseWriter, r *http.Request) {
		state := session.State()
		res := stateResponse{State: state.Kind.String(), Generation: state.Generation}
		if !state.Until.IsZero() {
			res.Until = &state.Until
		}
		writeJson(w, http.StatusOK, res)
	})

	mux.HandleFunc("POST /rollover", func(w http.ResponseWriter, r *http.Request) {
		err := session.Rollover(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}
