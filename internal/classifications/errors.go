package classifications

import (
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/faults"
)

// NotFound reports a classification id with no row.
func NotFound(id int64) error {
	return faults.NotFound("classification %d not found", id).With(id)
}

// Duplicate reports a name already used at the same level of a facility.
func Duplicate(level Level, name string) error {
	return faults.Conflict("classification %q already exists at level %d", name, level).With(name)
}

// MapHTTPStatus maps classification errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := auth.MapHTTPStatus(err); status != 0 {
		return status
	}
	return faults.MapHTTPStatus(err)
}
