package classifications

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/handlers"
	"github.com/JaimeStill/optigate/pkg/openapi"
	"github.com/JaimeStill/optigate/pkg/pagination"
	"github.com/JaimeStill/optigate/pkg/routes"
)

// Handler provides HTTP endpoints for the classification hierarchy.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "classifications"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for classification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"Classifications"},
		Schemas: map[string]*openapi.Schema{
			"Classification": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"classification_id":             {Type: "integer", Format: "int64"},
					"facility_id":                   {Type: "integer", Format: "int64"},
					"level":                         {Type: "integer", Enum: []any{1, 2, 3}},
					"name":                          {Type: "string"},
					"parent_classification_id":      {Type: "integer", Format: "int64"},
					"publication_classification_id": {Type: "integer", Format: "int64"},
					"created_by":                    {Type: "string"},
					"created_at":                    {Type: "string", Format: "date-time"},
				},
			},
			"CreateClassificationCommand": {
				Type:     "object",
				Required: []string{"level", "name"},
				Properties: map[string]*openapi.Schema{
					"facility_id":                   {Type: "integer", Format: "int64"},
					"level":                         {Type: "integer", Enum: []any{1, 2, 3}},
					"name":                          {Type: "string"},
					"parent_classification_id":      {Type: "integer", Format: "int64"},
					"publication_classification_id": {Type: "integer", Format: "int64"},
				},
			},
		},
		Children: []routes.Group{
			{
				Prefix: "/facilities/{facilityId}/classifications",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "",
						Handler: h.List,
						OpenAPI: &openapi.Operation{
							Summary: "List facility classifications",
							Parameters: append(
								[]*openapi.Parameter{
									openapi.PathParam("facilityId", "Facility ID"),
									openapi.QueryParam("level", "integer", "Hierarchy level (1 to 3)", false),
									openapi.QueryParam("parent_classification_id", "integer", "Parent classification ID", false),
								},
								openapi.WindowParams()...,
							),
							Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Classification window", "WindowResult"), 401, 403, 404, 422),
						},
					},
				},
			},
			{
				Prefix: "/classifications",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "/{id}",
						Handler: h.Find,
						OpenAPI: &openapi.Operation{
							Summary:    "Get classification",
							Parameters: []*openapi.Parameter{openapi.PathParam("id", "Classification ID")},
							Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Classification", "Classification"), 401, 403, 404, 422),
						},
					},
					{
						Method:  "POST",
						Pattern: "",
						Handler: h.Create,
						OpenAPI: &openapi.Operation{
							Summary:     "Create classification",
							RequestBody: openapi.RequestBodyJSON("CreateClassificationCommand", true),
							Responses:   openapi.Responses(http.StatusCreated, openapi.ResponseJSON("Created classification", "Classification"), 401, 403, 404, 409, 422),
						},
					},
				},
			},
		},
	}
}

// List returns a window of the classifications of the facility in the path.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	facilityID, err := handlers.PathID(r, "facilityId")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if err := auth.Authorize(r.Context(), facilityID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	window, err := pagination.WindowFromQuery(r.URL.Query(), h.pagination)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), facilityID, filters, window)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single classification. Facility-scoped nodes require access to their facility.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := authorizeNode(r, c.FacilityID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Create adds a classification. Shared nodes without a facility are admin-only.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := authorizeWrite(r, cmd.FacilityID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	c, err := h.sys.Create(r.Context(), cmd, auth.Actor(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

func authorizeNode(r *http.Request, facilityID *int64) error {
	if facilityID == nil {
		if _, ok := auth.FromContext(r.Context()); !ok {
			return auth.ErrUnauthenticated
		}
		return nil
	}
	return auth.Authorize(r.Context(), *facilityID)
}

func authorizeWrite(r *http.Request, facilityID *int64) error {
	if facilityID != nil {
		return auth.Authorize(r.Context(), *facilityID)
	}
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.ErrUnauthenticated
	}
	if p.Role != auth.RoleAdmin {
		return auth.ErrForbidden
	}
	return nil
}
