// Package reports publishes a facility's report selection as an xlsx workbook
// aggregating the effective analysis settings of its equipment, and stores
// the workbooks in blob storage.
package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/optigate/internal/analysis"
	"github.com/JaimeStill/optigate/internal/selections"
)

// ContentType is the media type of published workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Row aggregates the included equipment of one selected classification.
type Row struct {
	Rank               int    `json:"rank"`
	ClassificationID   int64  `json:"classification_id"`
	ClassificationName string `json:"classification_name"`
	EquipmentCount     int    `json:"equipment_count"`
	StockQuantity      int    `json:"stock_quantity"`
}

// Publication is a workbook produced by Publish.
type Publication struct {
	ID         uuid.UUID `json:"id"`
	FacilityID int64     `json:"facility_id"`
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Rows       []Row     `json:"rows"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Report describes a stored workbook. The publisher and download fields
// come from the publication log and are nil for unlogged workbooks.
type Report struct {
	ID            uuid.UUID  `json:"id"`
	FacilityID    int64      `json:"facility_id"`
	Key           string     `json:"key"`
	Size          int64      `json:"size"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatedBy     *string    `json:"created_by"`
	DownloadedBy  *string    `json:"download_user_id"`
	DownloadedAt  *time.Time `json:"download_datetime"`
	DownloadCount int        `json:"download_count"`
}

// Aggregate totals the settings that resolve to the selected classification
// and are effectively included in analysis.
func Aggregate(sel selections.Selection, settings []analysis.Setting) Row {
	row := Row{
		Rank:               sel.Rank,
		ClassificationID:   sel.ClassificationID,
		ClassificationName: sel.ClassificationName,
	}

	for _, s := range settings {
		if !s.EffectiveIsIncluded {
			continue
		}
		if s.EffectiveClassificationID == nil || *s.EffectiveClassificationID != sel.ClassificationID {
			continue
		}
		row.EquipmentCount++
		row.StockQuantity += s.StockQuantity
	}

	return row
}
