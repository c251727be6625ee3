package selections

import (
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/faults"
)

// NotInFacility reports selected ids that are not classifications of the facility.
func NotInFacility(facilityID int64, ids []int64) error {
	return faults.Validation(
		"classification ids not found for facility %d: %s",
		facilityID, faults.JoinIDs(ids),
	).With(anyIDs(ids)...)
}

// MapHTTPStatus maps selection errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := auth.MapHTTPStatus(err); status != 0 {
		return status
	}
	return faults.MapHTTPStatus(err)
}
