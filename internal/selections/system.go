package selections

import "context"

// System defines the report-selection list manager. Every operation returns
// NotFound when the facility does not exist.
type System interface {
	Handler() *Handler

	// Get returns the selection in rank order, capped at the facility maximum.
	Get(ctx context.Context, facilityID int64) (*Result, error)
	// Set replaces the whole selection in one transaction.
	Set(ctx context.Context, facilityID int64, cmd SetCommand, actor string) (*SetResult, error)
	Clear(ctx context.Context, facilityID int64) (*ClearResult, error)
}
