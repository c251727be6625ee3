// Package selections manages the rank-ordered list of classifications a
// facility publishes in its reports, bounded by the facility's configured
// maximum.
package selections

import (
	"slices"

	"github.com/JaimeStill/optigate/pkg/faults"
)

// Selection is one ranked entry of a facility's report selection. Ranks are dense from 1.
type Selection struct {
	Rank               int    `json:"rank"`
	ClassificationID   int64  `json:"classification_id"`
	ClassificationName string `json:"classification_name"`
}

// Result is the current selection of a facility with its maximum size.
type Result struct {
	FacilityID int64       `json:"facility_id"`
	MaxCount   int         `json:"max_count"`
	Selections []Selection `json:"selections"`
}

// SetCommand replaces the selection. Order defines rank.
type SetCommand struct {
	ClassificationIDs []int64 `json:"classification_ids"`
}

// SetResult reports a replaced selection.
type SetResult struct {
	FacilityID   int64       `json:"facility_id"`
	CreatedCount int         `json:"created_count"`
	DeletedCount int         `json:"deleted_count"`
	Selections   []Selection `json:"selections"`
}

// ClearResult reports a cleared selection.
type ClearResult struct {
	FacilityID   int64 `json:"facility_id"`
	DeletedCount int   `json:"deleted_count"`
}

// Check validates an ordered id list against maxCount. It rejects an empty
// list, repeated ids, non-positive ids and lists longer than maxCount.
func Check(ids []int64, maxCount int) error {
	if len(ids) == 0 {
		return faults.Validation("classification_ids must contain at least one id")
	}

	var invalid []int64
	for _, id := range ids {
		if id <= 0 {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return faults.Validation("classification ids must be positive: %s", faults.JoinIDs(invalid)).With(anyIDs(invalid)...)
	}

	if dups := duplicates(ids); len(dups) > 0 {
		return faults.Validation("duplicate classification ids: %s", faults.JoinIDs(dups)).With(anyIDs(dups)...)
	}

	if len(ids) > maxCount {
		return faults.Validation(
			"%d classifications selected, the facility allows at most %d",
			len(ids), maxCount,
		).With(len(ids), maxCount)
	}
	return nil
}

// Rank assigns dense ranks from 1 in list order.
func Rank(ids []int64) []Selection {
	out := make([]Selection, len(ids))
	for i, id := range ids {
		out[i] = Selection{Rank: i + 1, ClassificationID: id}
	}
	return out
}

// Cap returns at most maxCount selections in rank order.
func Cap(s []Selection, maxCount int) []Selection {
	s = slices.Clone(s)
	slices.SortFunc(s, func(a, b Selection) int { return a.Rank - b.Rank })
	if maxCount >= 0 && len(s) > maxCount {
		s = s[:maxCount]
	}
	if s == nil {
		s = []Selection{}
	}
	return s
}

// duplicates returns each repeated id once, in order of first repetition.
func duplicates(ids []int64) []int64 {
	seen := make(map[int64]int, len(ids))
	var dups []int64
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}

func anyIDs(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
