package tenants

import (
	"database/sql"

	"github.com/JaimeStill/optigate/pkg/query"
	"github.com/JaimeStill/optigate/pkg/repository"
)

// projection starts from facilities so that a missing settings row still yields defaults.
var projection = query.
	NewProjectionMap("public", "facilities", "f").
	Project("facility_id", "FacilityID").
	Join("public", "facility_settings", "s", "LEFT JOIN", "s.facility_id = f.facility_id").
	Project("max_reportout_classification_count", "MaxReportoutClassificationCount").
	Project("analysis_classification_level", "AnalysisClassificationLevel").
	Project("updated_at", "UpdatedAt")

func scanSettings(s repository.Scanner) (Settings, error) {
	var (
		id        int64
		maxCount  sql.NullInt32
		level     sql.NullInt32
		updatedAt sql.NullTime
	)
	if err := s.Scan(&id, &maxCount, &level, &updatedAt); err != nil {
		return Settings{}, err
	}

	settings := defaults(id)
	if maxCount.Valid {
		settings.MaxReportoutClassificationCount = int(maxCount.Int32)
	}
	if level.Valid {
		settings.AnalysisClassificationLevel = int(level.Int32)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		settings.UpdatedAt = &t
	}
	return settings, nil
}
