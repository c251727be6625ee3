package tenants

import "context"

// System defines the tenant settings provider.
type System interface {
	Handler() *Handler

	// Exists reports whether the facility row exists.
	Exists(ctx context.Context, facilityID int64) (bool, error)
	// Settings returns the facility settings, falling back to defaults when
	// no settings row exists. Returns NotFound when the facility does not exist.
	Settings(ctx context.Context, facilityID int64) (*Settings, error)
	UpdateSettings(ctx context.Context, facilityID int64, cmd UpdateSettingsCommand) (*Settings, error)
}
