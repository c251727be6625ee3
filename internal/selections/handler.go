package selections

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/handlers"
	"github.com/JaimeStill/optigate/pkg/openapi"
	"github.com/JaimeStill/optigate/pkg/routes"
)

// Handler provides HTTP endpoints for the report selection of a facility.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "selections"),
	}
}

// Routes returns the route group definition for report selection endpoints.
func (h *Handler) Routes() routes.Group {
	selection := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"rank":                {Type: "integer"},
			"classification_id":   {Type: "integer", Format: "int64"},
			"classification_name": {Type: "string"},
		},
	}
	facilityParam := []*openapi.Parameter{openapi.PathParam("facilityId", "Facility ID")}

	return routes.Group{
		Prefix: "/facilities/{facilityId}/report-selection",
		Tags:   []string{"Report Selection"},
		Schemas: map[string]*openapi.Schema{
			"SelectionResult": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"facility_id": {Type: "integer", Format: "int64"},
					"max_count":   {Type: "integer"},
					"selections":  {Type: "array", Items: selection},
				},
			},
			"SetSelectionCommand": {
				Type:     "object",
				Required: []string{"classification_ids"},
				Properties: map[string]*openapi.Schema{
					"classification_ids": {
						Type:        "array",
						Description: "Classification ids in rank order",
						Items:       &openapi.Schema{Type: "integer", Format: "int64"},
					},
				},
			},
			"SetSelectionResult": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"facility_id":   {Type: "integer", Format: "int64"},
					"created_count": {Type: "integer"},
					"deleted_count": {Type: "integer"},
					"selections":    {Type: "array", Items: selection},
				},
			},
			"ClearSelectionResult": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"facility_id":   {Type: "integer", Format: "int64"},
					"deleted_count": {Type: "integer"},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.Get,
				OpenAPI: &openapi.Operation{
					Summary:    "Get report selection",
					Parameters: facilityParam,
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Current selection", "SelectionResult"), 401, 403, 404, 422),
				},
			},
			{
				Method:  "PUT",
				Pattern: "",
				Handler: h.Set,
				OpenAPI: &openapi.Operation{
					Summary:     "Replace report selection",
					Parameters:  facilityParam,
					RequestBody: openapi.RequestBodyJSON("SetSelectionCommand", true),
					Responses:   openapi.Responses(http.StatusOK, openapi.ResponseJSON("Replaced selection", "SetSelectionResult"), 401, 403, 404, 409, 422),
				},
			},
			{
				Method:  "DELETE",
				Pattern: "",
				Handler: h.Clear,
				OpenAPI: &openapi.Operation{
					Summary:    "Clear report selection",
					Parameters: facilityParam,
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Cleared selection", "ClearSelectionResult"), 401, 403, 404, 409, 422),
				},
			},
		},
	}
}

// Get returns the current selection of the facility in the path.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Get(r.Context(), facilityID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Set replaces the selection of the facility in the path.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var cmd SetCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Set(r.Context(), facilityID, cmd, auth.Actor(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Clear removes every selection of the facility in the path.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Clear(r.Context(), facilityID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) facility(r *http.Request) (int64, error) {
	facilityID, err := handlers.PathID(r, "facilityId")
	if err != nil {
		return 0, err
	}
	return facilityID, auth.Authorize(r.Context(), facilityID)
}
