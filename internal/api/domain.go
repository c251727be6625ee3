package api

import (
	"github.com/JaimeStill/optigate/internal/analysis"
	"github.com/JaimeStill/optigate/internal/classifications"
	"github.com/JaimeStill/optigate/internal/reports"
	"github.com/JaimeStill/optigate/internal/selections"
	"github.com/JaimeStill/optigate/internal/tenants"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Tenants         tenants.System
	Classifications classifications.System
	Analysis        analysis.System
	Selections      selections.System
	Reports         reports.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	tenantsSystem := tenants.New(
		db,
		runtime.Validator,
		runtime.Logger,
		runtime.Clock,
	)

	classificationsSystem := classifications.New(
		db,
		tenantsSystem,
		runtime.Validator,
		runtime.Recorder,
		runtime.Logger,
		runtime.Pagination,
		runtime.Clock,
	)

	analysisSystem := analysis.New(
		db,
		tenantsSystem,
		runtime.Validator,
		runtime.Recorder,
		runtime.Logger,
		runtime.Pagination,
		runtime.Clock,
	)

	selectionsSystem := selections.New(
		db,
		tenantsSystem,
		classificationsSystem,
		runtime.Recorder,
		runtime.Logger,
		runtime.Clock,
	)

	reportsSystem := reports.New(
		analysisSystem,
		selectionsSystem,
		tenantsSystem,
		runtime.Storage,
		reports.NewLog(db),
		runtime.Reports,
		runtime.Pagination.MaxLimit,
		runtime.Recorder,
		runtime.Logger,
		runtime.Clock,
	)

	return &Domain{
		Tenants:         tenantsSystem,
		Classifications: classificationsSystem,
		Analysis:        analysisSystem,
		Selections:      selectionsSystem,
		Reports:         reportsSystem,
	}
}
