package tenants

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/handlers"
	"github.com/JaimeStill/optigate/pkg/openapi"
	"github.com/JaimeStill/optigate/pkg/routes"
)

// Handler provides HTTP endpoints for facility settings.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "tenants"),
	}
}

// Routes returns the route group definition for facility settings endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/facilities/{facilityId}/settings",
		Tags:   []string{"Facility Settings"},
		Schemas: map[string]*openapi.Schema{
			"Settings": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"facility_id":                        {Type: "integer", Format: "int64"},
					"max_reportout_classification_count": {Type: "integer", Default: DefaultMaxReportoutClassificationCount},
					"analysis_classification_level":      {Type: "integer", Default: DefaultAnalysisClassificationLevel},
					"updated_at":                         {Type: "string", Format: "date-time"},
				},
			},
			"UpdateSettingsCommand": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"max_reportout_classification_count": {Type: "integer"},
					"analysis_classification_level":      {Type: "integer", Enum: []any{1, 2, 3}},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Get facility settings",
					Parameters: []*openapi.Parameter{openapi.PathParam("facilityId", "Facility ID")},
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Facility settings", "Settings"), 401, 403, 404),
				},
			},
			{
				Method:  "PUT",
				Pattern: "",
				Handler: h.Update,
				OpenAPI: &openapi.Operation{
					Summary:     "Update facility settings",
					Parameters:  []*openapi.Parameter{openapi.PathParam("facilityId", "Facility ID")},
					RequestBody: openapi.RequestBodyJSON("UpdateSettingsCommand", true),
					Responses:   openapi.Responses(http.StatusOK, openapi.ResponseJSON("Updated settings", "Settings"), 401, 403, 404, 422),
				},
			},
		},
	}
}

// Find returns the settings of the facility in the path.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	s, err := h.sys.Settings(r.Context(), facilityID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Update changes the settings of the facility in the path. Only admins may change settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if p, _ := auth.FromContext(r.Context()); p.Role != auth.RoleAdmin {
		handlers.RespondError(w, h.logger, http.StatusForbidden, auth.ErrForbidden)
		return
	}

	var cmd UpdateSettingsCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	s, err := h.sys.UpdateSettings(r.Context(), facilityID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) facility(r *http.Request) (int64, error) {
	facilityID, err := handlers.PathID(r, "facilityId")
	if err != nil {
		return 0, err
	}
	return facilityID, auth.Authorize(r.Context(), facilityID)
}
