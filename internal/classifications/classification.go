// Package classifications stores the three-level equipment classification
// hierarchy of each facility and enforces its parent/level rules.
package classifications

import "time"

// Level is the depth of a classification node: 1 (major), 2 (middle) or 3 (minor).
type Level int

const (
	LevelMajor  Level = 1
	LevelMiddle Level = 2
	LevelMinor  Level = 3
)

// Valid reports whether l is one of the three hierarchy levels.
func (l Level) Valid() bool {
	return l >= LevelMajor && l <= LevelMinor
}

// Classification is one node of the hierarchy. FacilityID is nil for
// nodes shared by every facility.
type Classification struct {
	ID            int64     `json:"classification_id"`
	FacilityID    *int64    `json:"facility_id"`
	Level         Level     `json:"level"`
	Name          string    `json:"name"`
	ParentID      *int64    `json:"parent_classification_id"`
	PublicationID *int64    `json:"publication_classification_id"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateCommand adds a single node to the hierarchy.
type CreateCommand struct {
	FacilityID    *int64 `json:"facility_id" validate:"omitempty,gt=0"`
	Level         Level  `json:"level" validate:"required,min=1,max=3"`
	Name          string `json:"name" validate:"notblank,max=255"`
	ParentID      *int64 `json:"parent_classification_id" validate:"omitempty,gt=0"`
	PublicationID *int64 `json:"publication_classification_id" validate:"omitempty,gt=0"`
}

// ImportResult summarizes a hierarchy import for one facility.
type ImportResult struct {
	FacilityID int64 `json:"facility_id"`
	Created    int   `json:"created"`
	Existing   int   `json:"existing"`
	Skipped    int   `json:"skipped"`
}
