package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sandevgo/docvault/internal/core"
	"github.com/sandevgo/docvault/pkg/log"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Debug  string `json:"debug,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError translates the error taxonomy into the wire envelope. The
// response carries the error kind and a stable detail string; the raw wrapped
// chain is exposed only in debug mode.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, status := classify(err)

	resp := errorResponse{Error: kind, Detail: err.Error()}
	if s.debug {
		resp.Debug = kind + ": " + err.Error()
	}

	if status >= http.StatusInternalServerError {
		log.FromCtx(r.Context()).Error().Err(err).Str("kind", kind).Msg("request failed")
	}
	s.writeJSON(w, status, resp)
}

func classify(err error) (kind string, status int) {
	var (
		validationErr  *core.ValidationError
		unsupportedErr *core.UnsupportedTypeError
		configErr      *core.ConfigurationError
		providerErr    *core.ProviderError
		runFailedErr   *core.RunFailedError
		runTimeoutErr  *core.RunTimeoutError
		duplicateErr   *core.DuplicateResourceError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &unsupportedErr):
		return "validation", http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.As(err, &configErr):
		return "configuration", http.StatusInternalServerError
	case errors.As(err, &providerErr):
		return "provider", http.StatusInternalServerError
	case errors.As(err, &runFailedErr):
		return "run_failed", http.StatusInternalServerError
	case errors.As(err, &runTimeoutErr):
		return "run_timeout", http.StatusInternalServerError
	case errors.As(err, &duplicateErr):
		return "duplicate_resource", http.StatusInternalServerError
	default:
		return "internal", http.StatusInternalServerError
	}
}
