package analysis

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/handlers"
	"github.com/JaimeStill/optigate/pkg/openapi"
	"github.com/JaimeStill/optigate/pkg/pagination"
	"github.com/JaimeStill/optigate/pkg/routes"
)

// Handler provides HTTP endpoints for equipment analysis settings.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "analysis"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for analysis settings endpoints.
func (h *Handler) Routes() routes.Group {
	facilityParam := openapi.PathParam("facilityId", "Facility ID")
	ledgerParam := openapi.PathParam("ledgerId", "Equipment ledger ID")

	return routes.Group{
		Tags:    []string{"Analysis Settings"},
		Schemas: schemas(),
		Children: []routes.Group{
			{
				Prefix: "/facilities/{facilityId}/analysis-settings",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "",
						Handler: h.List,
						OpenAPI: &openapi.Operation{
							Summary: "List effective analysis settings",
							Parameters: append(
								[]*openapi.Parameter{
									facilityParam,
									openapi.QueryParam("classification_id", "integer", "Match default or override classification", false),
								},
								openapi.WindowParams()...,
							),
							Responses: openapi.Responses(http.StatusOK, openapi.ResponseJSON("Settings window", "WindowResult"), 401, 403, 404, 422),
						},
					},
					{
						Method:  "DELETE",
						Pattern: "",
						Handler: h.RestoreFacility,
						OpenAPI: &openapi.Operation{
							Summary:     "Restore every setting of the facility to default",
							Description: "Deletes every override of the facility together with its history.",
							Parameters:  []*openapi.Parameter{facilityParam},
							Responses:   openapi.Responses(http.StatusOK, openapi.ResponseJSON("Restored entries", "RestoreResult"), 401, 403, 409),
						},
					},
				},
			},
			{
				Prefix: "/analysis-settings/{ledgerId}",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "",
						Handler: h.Find,
						OpenAPI: &openapi.Operation{
							Summary:    "Get effective analysis setting",
							Parameters: []*openapi.Parameter{ledgerParam},
							Responses:  openapi.Responses(http.StatusOK, openapi.ResponseJSON("Setting", "Setting"), 401, 403, 404, 422),
						},
					},
					{
						Method:  "PUT",
						Pattern: "/analysis-target",
						Handler: h.SetIncluded,
						OpenAPI: &openapi.Operation{
							Summary:     "Override the analysis-target flag",
							Parameters:  []*openapi.Parameter{ledgerParam},
							RequestBody: openapi.RequestBodyJSON("SetIncludedCommand", true),
							Responses:   openapi.Responses(http.StatusOK, openapi.ResponseJSON("Override result", "SetIncludedResult"), 400, 401, 403, 404, 409, 422),
						},
					},
					{
						Method:  "PUT",
						Pattern: "/classification",
						Handler: h.SetClassification,
						OpenAPI: &openapi.Operation{
							Summary:     "Override the classification",
							Parameters:  []*openapi.Parameter{ledgerParam},
							RequestBody: openapi.RequestBodyJSON("SetClassificationCommand", true),
							Responses:   openapi.Responses(http.StatusOK, openapi.ResponseJSON("Override result", "SetClassificationResult"), 400, 401, 403, 404, 409, 422),
						},
					},
					{
						Method:  "DELETE",
						Pattern: "",
						Handler: h.Restore,
						OpenAPI: &openapi.Operation{
							Summary:     "Restore the setting to default",
							Description: "Deletes the override together with its history.",
							Parameters:  []*openapi.Parameter{ledgerParam},
							Responses:   openapi.Responses(http.StatusOK, openapi.ResponseJSON("Restored entry", "RestoreResult"), 401, 403, 404, 409, 422),
						},
					},
				},
			},
		},
	}
}

// List returns a window of the facility's effective settings.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
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

// Find returns the effective setting of one ledger entry.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := h.ledger(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	s, err := h.sys.Find(r.Context(), ledgerID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// SetIncluded overrides the analysis-target flag of a ledger entry.
func (h *Handler) SetIncluded(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := h.ledger(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var cmd SetIncludedCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.SetIncluded(r.Context(), ledgerID, cmd, auth.Actor(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// SetClassification overrides the classification of a ledger entry.
func (h *Handler) SetClassification(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := h.ledger(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var cmd SetClassificationCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.SetClassification(r.Context(), ledgerID, cmd, auth.Actor(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Restore deletes the override of one ledger entry.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := h.ledger(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Restore(r.Context(), ledgerID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// RestoreFacility deletes every override of the facility in the path.
func (h *Handler) RestoreFacility(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.RestoreFacility(r.Context(), facilityID)
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

// ledger resolves the ledger id in the path and authorizes its owning facility.
func (h *Handler) ledger(r *http.Request) (int64, error) {
	ledgerID, err := handlers.PathID(r, "ledgerId")
	if err != nil {
		return 0, err
	}

	if _, ok := auth.FromContext(r.Context()); !ok {
		return 0, auth.ErrUnauthenticated
	}

	facilityID, err := h.sys.FacilityOf(r.Context(), ledgerID)
	if err != nil {
		return 0, err
	}
	return ledgerID, auth.Authorize(r.Context(), facilityID)
}
