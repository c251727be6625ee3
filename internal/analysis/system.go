package analysis

import (
	"context"

	"github.com/JaimeStill/optigate/pkg/pagination"
)

// System defines the analysis settings operations.
type System interface {
	Handler() *Handler

	// List returns a window of the facility's resolved settings.
	// Returns NotFound when the facility does not exist.
	List(ctx context.Context, facilityID int64, filters Filters, w pagination.Window) (*pagination.WindowResult[Setting], error)
	Find(ctx context.Context, ledgerID int64) (*Setting, error)
	// FacilityOf returns the facility that owns the ledger entry.
	FacilityOf(ctx context.Context, ledgerID int64) (int64, error)

	SetIncluded(ctx context.Context, ledgerID int64, cmd SetIncludedCommand, actor string) (*SetIncludedResult, error)
	SetClassification(ctx context.Context, ledgerID int64, cmd SetClassificationCommand, actor string) (*SetClassificationResult, error)

	// Restore deletes the override of one ledger entry together with its history.
	Restore(ctx context.Context, ledgerID int64) (*RestoreResult, error)
	// RestoreFacility deletes every override of the facility. Zero matches is not an error.
	RestoreFacility(ctx context.Context, facilityID int64) (*RestoreResult, error)
}
