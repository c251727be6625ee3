package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JaimeStill/optigate/pkg/faults"
)

// TimestampLayout is the wire format of HistoryEntry.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// MaxNoteLength is the maximum note length in characters after trimming.
const MaxNoteLength = 500

// HistoryEntry is one audit record of an override change.
type HistoryEntry struct {
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
	Note      string `json:"note"`
}

// History is the ordered audit log of an override. Entries are only ever appended.
type History []HistoryEntry

// NewHistoryEntry stamps note with actor and at, formatted in UTC.
func NewHistoryEntry(actor, note string, at time.Time) HistoryEntry {
	return HistoryEntry{
		UserID:    actor,
		Timestamp: at.UTC().Format(TimestampLayout),
		Note:      note,
	}
}

// Append returns a new history with e after the existing entries. h is not modified.
func (h History) Append(e HistoryEntry) History {
	next := make(History, len(h), len(h)+1)
	copy(next, h)
	return append(next, e)
}

// EncodeHistory serializes h for storage. A nil history encodes as an empty array.
func EncodeHistory(h History) ([]byte, error) {
	if h == nil {
		h = History{}
	}
	return json.Marshal(h)
}

// DecodeHistory parses stored history. Empty or null input is an empty history.
func DecodeHistory(raw []byte) (History, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return History{}, nil
	}

	var h History
	if err := json.Unmarshal(raw, &h); err != nil {
		return History{}, err
	}
	if h == nil {
		h = History{}
	}
	return h, nil
}

// NormalizeNote trims note and checks it is present and within MaxNoteLength characters.
func NormalizeNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return "", faults.Validation("note is required").With("note")
	}
	if n := utf8.RuneCountInString(note); n > MaxNoteLength {
		return "", faults.Validation("note must be at most %d characters, got %d", MaxNoteLength, n).With("note")
	}
	return note, nil
}
