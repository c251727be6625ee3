// Package handlers provides JSON response helpers shared by domain HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/optigate/pkg/faults"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Values []any  `json:"values,omitempty"`
}

// RespondJSON writes data as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as an ErrorResponse.
// Server errors are logged at error level; client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	resp := ErrorResponse{Error: err.Error()}
	if kind := faults.KindName(err); kind != "internal" {
		resp.Kind = kind
		resp.Values = faults.ValuesOf(err)
	}

	RespondJSON(w, status, resp)
}

// RespondFault writes err using the status derived from its fault kind.
func RespondFault(w http.ResponseWriter, logger *slog.Logger, err error) {
	RespondError(w, logger, faults.MapHTTPStatus(err), err)
}
