// Package analysis resolves the effective analysis settings of equipment
// ledger entries from their defaults and optional overrides, and records every
// override change in an append-only history.
package analysis

import "time"

// LedgerEntry is the read side of an equipment ledger row. Its defaults are
// computed outside this service and never change here.
type LedgerEntry struct {
	ID                      int64   `json:"ledger_id"`
	FacilityID              int64   `json:"facility_id"`
	ModelNumber             string  `json:"model_number"`
	ProductName             *string `json:"product_name"`
	MakerName               *string `json:"maker_name"`
	DefaultClassificationID *int64  `json:"default_classification_id"`
	StockQuantity           int     `json:"stock_quantity"`
	DefaultIsIncluded       bool    `json:"default_is_included"`
}

// Override holds the fields that differ from a ledger entry's defaults.
// Nil fields fall through to the default.
type Override struct {
	LedgerID         int64      `json:"ledger_id"`
	IsIncluded       *bool      `json:"override_is_included"`
	ClassificationID *int64     `json:"override_classification_id"`
	History          History    `json:"history"`
	Version          int        `json:"version"`
	CreatedBy        string     `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	LastModifiedBy   *string    `json:"last_modified_by"`
	LastModifiedAt   *time.Time `json:"last_modified_at"`
}

// Setting is one resolved row of the effective-settings reader.
type Setting struct {
	LedgerEntry

	DefaultClassificationName  *string `json:"default_classification_name"`
	DefaultClassificationLevel *int    `json:"default_classification_level"`

	OverrideIsIncluded       *bool  `json:"override_is_included"`
	OverrideClassificationID *int64 `json:"override_classification_id"`

	Effective

	History        History    `json:"history"`
	Version        int        `json:"version"`
	LastModifiedBy *string    `json:"last_modified_by"`
	LastModifiedAt *time.Time `json:"last_modified_at"`
}

// SetIncludedCommand overrides the analysis-target flag of a ledger entry.
type SetIncludedCommand struct {
	IsIncluded *bool  `json:"override_is_included" validate:"required"`
	Note       string `json:"note" validate:"notblank"`
}

// SetClassificationCommand overrides the classification of a ledger entry.
type SetClassificationCommand struct {
	ClassificationID *int64 `json:"override_classification_id" validate:"required,gt=0"`
	Note             string `json:"note" validate:"notblank"`
}

// SetIncludedResult reports the state after an analysis-target override.
type SetIncludedResult struct {
	LedgerID            int64     `json:"ledger_id"`
	OverrideIsIncluded  bool      `json:"override_is_included"`
	EffectiveIsIncluded bool      `json:"effective_is_included"`
	UpdatedAt           time.Time `json:"updated_at"`
	HistoryLength       int       `json:"history_length"`
}

// SetClassificationResult reports the state after a classification override.
type SetClassificationResult struct {
	LedgerID                  int64     `json:"ledger_id"`
	OverrideClassificationID  int64     `json:"override_classification_id"`
	EffectiveClassificationID int64     `json:"effective_classification_id"`
	ClassificationName        string    `json:"classification_name"`
	UpdatedAt                 time.Time `json:"updated_at"`
	HistoryLength             int       `json:"history_length"`
}

// RestoreResult lists the ledger entries whose overrides were deleted.
type RestoreResult struct {
	AffectedCount int     `json:"affected_count"`
	LedgerIDs     []int64 `json:"ledger_ids"`
}

// Filters narrows the effective-settings reader. Nil fields are ignored.
type Filters struct {
	// ClassificationID matches rows whose default or override classification is the id.
	ClassificationID *int64 `json:"classification_id,omitempty"`
}
