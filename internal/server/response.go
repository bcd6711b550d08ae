package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// Error codes returned in apiError.Code.
const (
	codeInvalidRequest = "invalid_request"
	codeRunNotFound    = "run_not_found"
	codeRunNotLocated  = "run_not_located"
	codeUpstreamAuth   = "github_auth"
	codeUnavailable    = "github_unavailable"
	codeInternal       = "internal_error"
)

// apiError is the JSON body of every error response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &apiError{Code: code, Message: message})
}

// writeFetchError maps the fetch error taxonomy onto HTTP statuses.
func writeFetchError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrRunNotFound):
		writeError(w, http.StatusNotFound, codeRunNotFound, errors.UserMessage(err))
	case stderrors.Is(err, errors.ErrRunNotLocated):
		writeError(w, http.StatusGatewayTimeout, codeRunNotLocated, errors.UserMessage(err))
	case stderrors.Is(err, errors.ErrGitHubAuth):
		writeError(w, http.StatusBadGateway, codeUpstreamAuth, errors.UserMessage(err))
	case stderrors.Is(err, errors.ErrTransientFetch):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, errors.UserMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "an unexpected error occurred")
	}
}
