package analysis

import (
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/faults"
)

// LedgerNotFound reports a ledger id with no equipment ledger row.
func LedgerNotFound(ledgerID int64) error {
	return faults.NotFound("equipment ledger entry %d not found", ledgerID).With(ledgerID)
}

// OverrideNotFound reports a ledger entry that has no override to restore.
func OverrideNotFound(ledgerID int64) error {
	return faults.NotFound("no override exists for ledger entry %d", ledgerID).With(ledgerID)
}

// UnknownClassification reports an override target with no classification row.
func UnknownClassification(id int64) error {
	return faults.Validation("classification id %d does not exist", id).With(id)
}

// MapHTTPStatus maps analysis errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := auth.MapHTTPStatus(err); status != 0 {
		return status
	}
	return faults.MapHTTPStatus(err)
}
