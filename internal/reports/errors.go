package reports

import (
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/faults"
)

// NoSelection reports a publish request for a facility with an empty report selection.
func NoSelection(facilityID int64) error {
	return faults.Validation("facility %d has no report selection", facilityID).With(facilityID)
}

// NotFound reports a report id with no stored workbook.
func NotFound(facilityID int64, id string) error {
	return faults.NotFound("report %s not found for facility %d", id, facilityID).With(id)
}

// MapHTTPStatus maps report errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := auth.MapHTTPStatus(err); status != 0 {
		return status
	}
	return faults.MapHTTPStatus(err)
}
