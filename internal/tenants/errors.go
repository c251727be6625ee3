package tenants

import (
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/faults"
)

// FacilityNotFound reports a facility id with no facility row.
func FacilityNotFound(facilityID int64) error {
	return faults.NotFound("facility %d does not exist", facilityID).With(facilityID)
}

// MapHTTPStatus maps tenant errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := auth.MapHTTPStatus(err); status != 0 {
		return status
	}
	return faults.MapHTTPStatus(err)
}
