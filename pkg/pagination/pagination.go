package pagination

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/optigate/pkg/faults"
)

// Window selects Limit rows after skipping Skip rows.
type Window struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Validate rejects a negative skip or a limit outside 1..cfg.MaxLimit.
func (w Window) Validate(cfg Config) error {
	if w.Skip < 0 {
		return faults.Validation("skip must be zero or greater, got %d", w.Skip).With(w.Skip)
	}
	if w.Limit < 1 || w.Limit > cfg.MaxLimit {
		return faults.Validation("limit must be between 1 and %d, got %d", cfg.MaxLimit, w.Limit).With(w.Limit)
	}
	return nil
}

// WindowFromQuery parses skip and limit from URL query values.
// Absent values take their defaults; malformed or out-of-range values are rejected.
func WindowFromQuery(values url.Values, cfg Config) (Window, error) {
	w := Window{Skip: 0, Limit: cfg.DefaultLimit}

	if v := values.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return w, faults.Validation("skip must be an integer: %q", v).With(v)
		}
		w.Skip = n
	}

	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return w, faults.Validation("limit must be an integer: %q", v).With(v)
		}
		w.Limit = n
	}

	return w, w.Validate(cfg)
}

// WindowResult holds a window of data with the total match count.
type WindowResult[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"total_count"`
	Skip       int  `json:"skip"`
	Limit      int  `json:"limit"`
	HasNext    bool `json:"has_next"`
}

// NewWindowResult creates a WindowResult. HasNext reports whether rows remain past the window.
func NewWindowResult[T any](items []T, total int, w Window) WindowResult[T] {
	if items == nil {
		items = []T{}
	}

	return WindowResult[T]{
		Items:      items,
		TotalCount: total,
		Skip:       w.Skip,
		Limit:      w.Limit,
		HasNext:    w.Skip+w.Limit < total,
	}
}
