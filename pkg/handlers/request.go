package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/JaimeStill/optigate/pkg/faults"
)

// PathID parses the named path value as a positive int64 identifier.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, faults.Validation("%s must be a positive integer, got %q", name, raw).With(raw)
	}
	return id, nil
}

// DecodeJSON decodes the request body into dst. Unknown fields, empty bodies,
// trailing data and oversized bodies are rejected as validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return faults.Validation("request body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return faults.Validation("request body is required")
		}
		return faults.Validation("malformed request body: %v", err)
	}

	if dec.More() {
		return faults.Validation("request body must contain a single JSON object")
	}
	return nil
}
