package classifications

import (
	"context"

	"github.com/JaimeStill/optigate/pkg/pagination"
)

// System defines the classification hierarchy store.
type System interface {
	Handler() *Handler

	// List returns a window of the facility's classifications ordered by
	// level, parent and name. Returns NotFound when the facility does not exist.
	List(ctx context.Context, facilityID int64, filters Filters, w pagination.Window) (*pagination.WindowResult[Classification], error)
	Find(ctx context.Context, id int64) (*Classification, error)
	Create(ctx context.Context, cmd CreateCommand, actor string) (*Classification, error)

	// Exists reports whether a classification row with id exists.
	Exists(ctx context.Context, id int64) (bool, error)
	// MissingFromFacility returns the ids that are not classifications of the
	// facility, in input order.
	MissingFromFacility(ctx context.Context, facilityID int64, ids []int64) ([]int64, error)

	// Import creates the nodes of tree that the facility does not have yet.
	Import(ctx context.Context, facilityID int64, tree Tree, actor string) (*ImportResult, error)
}
