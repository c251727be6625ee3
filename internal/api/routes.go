package api

import (
	"net/http"

	"github.com/JaimeStill/optigate/pkg/openapi"
	"github.com/JaimeStill/optigate/pkg/routes"
)

// Groups returns the route groups of every domain handler.
func (d *Domain) Groups() []routes.Group {
	return []routes.Group{
		d.Tenants.Handler().Routes(),
		d.Classifications.Handler().Routes(),
		d.Analysis.Handler().Routes(),
		d.Selections.Handler().Routes(),
		d.Reports.Handler().Routes(),
	}
}

func registerRoutes(mux *http.ServeMux, groups []routes.Group) {
	routes.Register(mux, groups...)
}

// NewSpec documents groups as served under basePath.
func NewSpec(cfg *openapi.Config, version, basePath string, groups []routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.Title, version)
	cfg.Apply(spec, basePath)
	routes.Document(spec, "", groups...)
	return spec
}
