package selections

import (
	"github.com/JaimeStill/optigate/pkg/query"
	"github.com/JaimeStill/optigate/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "report_selections", "rs").
	Project("rank", "Rank").
	Project("classification_id", "ClassificationID").
	Project("facility_id", "FacilityID").
	Join("public", "classifications", "c", "JOIN", "c.classification_id = rs.classification_id").
	Project("name", "ClassificationName")

func scanSelection(s repository.Scanner) (Selection, error) {
	var (
		sel        Selection
		facilityID int64
	)
	err := s.Scan(&sel.Rank, &sel.ClassificationID, &facilityID, &sel.ClassificationName)
	return sel, err
}
