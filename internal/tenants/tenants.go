// Package tenants provides per-facility settings consumed by the analysis and
// report-selection domains, and answers facility existence checks.
package tenants

import "time"

// Defaults applied when a facility has no settings row.
const (
	DefaultMaxReportoutClassificationCount = 5
	DefaultAnalysisClassificationLevel     = 3
)

// Settings holds the tenant-level inputs of the core: how many classifications
// a report may carry and at which hierarchy level equipment is analyzed.
type Settings struct {
	FacilityID                      int64      `json:"facility_id"`
	MaxReportoutClassificationCount int        `json:"max_reportout_classification_count"`
	AnalysisClassificationLevel     int        `json:"analysis_classification_level"`
	UpdatedAt                       *time.Time `json:"updated_at"`
}

// UpdateSettingsCommand changes the facility settings. Nil fields keep their current value.
type UpdateSettingsCommand struct {
	MaxReportoutClassificationCount *int `json:"max_reportout_classification_count" validate:"omitempty,min=1,max=100"`
	AnalysisClassificationLevel     *int `json:"analysis_classification_level" validate:"omitempty,min=1,max=3"`
}

// Apply returns s with the non-nil command fields replaced.
func (c UpdateSettingsCommand) Apply(s Settings) Settings {
	if c.MaxReportoutClassificationCount != nil {
		s.MaxReportoutClassificationCount = *c.MaxReportoutClassificationCount
	}
	if c.AnalysisClassificationLevel != nil {
		s.AnalysisClassificationLevel = *c.AnalysisClassificationLevel
	}
	return s
}

func defaults(facilityID int64) Settings {
	return Settings{
		FacilityID:                      facilityID,
		MaxReportoutClassificationCount: DefaultMaxReportoutClassificationCount,
		AnalysisClassificationLevel:     DefaultAnalysisClassificationLevel,
	}
}
