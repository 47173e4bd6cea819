package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"unit-recon/internal/app"
	"unit-recon/internal/core"
)

type errorResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code"`
	RequestID   string   `json:"request_id,omitempty"`
	Details     []string `json:"details,omitempty"`
	FailedIndex *int     `json:"failed_index,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusForKind maps a core error kind to its HTTP status.
func statusForKind(kind string) int {
	switch kind {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	case core.KindValidationFailed, core.KindPartialBulkFailure:
		return http.StatusUnprocessableEntity
	case core.KindInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError classifies err from the application layer and writes the matching
// response. Internal errors are logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.ErrorKind(err)
	resp := errorResponse{
		Error:     err.Error(),
		Code:      kind,
		RequestID: requestIDFromContext(r.Context()),
	}

	switch kind {
	case core.KindInternal:
		requestLogger(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		resp.Error = "internal server error"
	case core.KindInvalidInput:
		resp.Details = app.FieldErrors(err)
	case core.KindValidationFailed:
		resp.Details = core.ErrorMessages(err)
	case core.KindPartialBulkFailure:
		var bulk *core.BulkLinkError
		if errors.As(err, &bulk) {
			idx := bulk.Index
			resp.FailedIndex = &idx
		}
		resp.Details = core.ErrorMessages(err)
	}
	writeErrorResponse(w, statusForKind(kind), resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
