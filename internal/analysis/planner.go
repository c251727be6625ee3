package analysis

import (
	"time"

	"github.com/JaimeStill/optigate/pkg/faults"
)

// PlanIncluded returns the override that results from applying cmd to
// current, which is nil when entry has no override yet. A value equal to the
// entry default is rejected; the caller restores the default instead.
func PlanIncluded(entry LedgerEntry, current *Override, cmd SetIncludedCommand, actor string, at time.Time) (Override, error) {
	if cmd.IsIncluded == nil {
		return Override{}, faults.Validation("override_is_included is required").With("override_is_included")
	}

	value := *cmd.IsIncluded
	if value == entry.DefaultIsIncluded {
		return Override{}, faults.InvalidOverride(
			"override_is_included %t is the same as the default %t, restore the default instead",
			value, entry.DefaultIsIncluded,
		).With(value)
	}

	note, err := NormalizeNote(cmd.Note)
	if err != nil {
		return Override{}, err
	}

	next := advance(entry, current, actor, note, at)
	next.IsIncluded = &value
	return next, nil
}

// PlanClassification returns the override that results from applying cmd to
// current. A new override also sets the inclusion flag to true. The caller
// checks that the target classification exists.
func PlanClassification(entry LedgerEntry, current *Override, cmd SetClassificationCommand, actor string, at time.Time) (Override, error) {
	if cmd.ClassificationID == nil {
		return Override{}, faults.Validation("override_classification_id is required").With("override_classification_id")
	}

	id := *cmd.ClassificationID
	if entry.DefaultClassificationID != nil && *entry.DefaultClassificationID == id {
		return Override{}, faults.InvalidOverride(
			"override_classification_id %d is the same as the default, restore the default instead",
			id,
		).With(id)
	}

	note, err := NormalizeNote(cmd.Note)
	if err != nil {
		return Override{}, err
	}

	next := advance(entry, current, actor, note, at)
	if current == nil {
		included := true
		next.IsIncluded = &included
	}
	next.ClassificationID = &id
	return next, nil
}

// advance copies current, appends the audit entry and stamps the change.
// A nil current starts a new override at version 1.
func advance(entry LedgerEntry, current *Override, actor, note string, at time.Time) Override {
	entryAt := at.UTC()
	record := NewHistoryEntry(actor, note, entryAt)

	if current == nil {
		return Override{
			LedgerID:       entry.ID,
			History:        History{record},
			Version:        1,
			CreatedBy:      actor,
			CreatedAt:      entryAt,
			LastModifiedBy: &actor,
			LastModifiedAt: &entryAt,
		}
	}

	next := *current
	next.History = current.History.Append(record)
	next.Version = current.Version + 1
	next.LastModifiedBy = &actor
	next.LastModifiedAt = &entryAt
	return next
}
