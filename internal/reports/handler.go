package reports

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/faults"
	"github.com/JaimeStill/optigate/pkg/handlers"
	"github.com/JaimeStill/optigate/pkg/openapi"
	"github.com/JaimeStill/optigate/pkg/routes"
)

// Handler provides HTTP endpoints for publishing and retrieving reports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "reports"),
	}
}

// Routes returns the route group definition for report endpoints.
func (h *Handler) Routes() routes.Group {
	row := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"rank":                {Type: "integer"},
			"classification_id":   {Type: "integer", Format: "int64"},
			"classification_name": {Type: "string"},
			"equipment_count":     {Type: "integer"},
			"stock_quantity":      {Type: "integer"},
		},
	}
	facilityParam := openapi.PathParam("facilityId", "Facility ID")

	return routes.Group{
		Prefix: "/facilities/{facilityId}/reports",
		Tags:   []string{"Reports"},
		Schemas: map[string]*openapi.Schema{
			"Publication": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"id":          {Type: "string", Format: "uuid"},
					"facility_id": {Type: "integer", Format: "int64"},
					"key":         {Type: "string"},
					"size":        {Type: "integer", Format: "int64"},
					"rows":        {Type: "array", Items: row},
					"created_by":  {Type: "string"},
					"created_at":  {Type: "string", Format: "date-time"},
				},
			},
			"Report": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"id":                {Type: "string", Format: "uuid"},
					"facility_id":       {Type: "integer", Format: "int64"},
					"key":               {Type: "string"},
					"size":              {Type: "integer", Format: "int64"},
					"created_at":        {Type: "string", Format: "date-time"},
					"created_by":        {Type: "string", Description: "Publisher; null when the workbook is not in the publication log"},
					"download_user_id":  {Type: "string", Description: "Last downloader; null until first download"},
					"download_datetime": {Type: "string", Format: "date-time", Description: "Time of the last download"},
					"download_count":    {Type: "integer"},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "",
				Handler: h.Publish,
				OpenAPI: &openapi.Operation{
					Summary:     "Publish report",
					Description: "Aggregates the effective settings of each selected classification into an xlsx workbook",
					Parameters:  []*openapi.Parameter{facilityParam},
					Responses:   openapi.Responses(http.StatusCreated, openapi.ResponseJSON("Published report", "Publication"), 401, 403, 404, 422),
				},
			},
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary:    "List reports",
					Parameters: []*openapi.Parameter{facilityParam},
					Responses: map[int]*openapi.Response{
						200: {
							Description: "Stored reports, newest first",
							Content: map[string]*openapi.MediaType{
								"application/json": {
									Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Report")},
								},
							},
						},
						401: openapi.ResponseRef("Unauthorized"),
						403: openapi.ResponseRef("Forbidden"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method:  "GET",
				Pattern: "/{id}",
				Handler: h.Download,
				OpenAPI: &openapi.Operation{
					Summary: "Download report",
					Parameters: []*openapi.Parameter{
						facilityParam,
						openapi.UUIDPathParam("id", "Report ID"),
					},
					Responses: map[int]*openapi.Response{
						200: {
							Description: "Report workbook",
							Content: map[string]*openapi.MediaType{
								ContentType: {
									Schema: &openapi.Schema{Type: "string", Format: "binary"},
								},
							},
						},
						401: openapi.ResponseRef("Unauthorized"),
						403: openapi.ResponseRef("Forbidden"),
						404: openapi.ResponseRef("NotFound"),
						422: openapi.ResponseRef("UnprocessableEntity"),
					},
				},
			},
		},
	}
}

// Publish builds and stores a report for the facility in the path.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	pub, err := h.sys.Publish(r.Context(), facilityID, auth.Actor(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, pub)
}

// List returns the stored reports of the facility in the path.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	reports, err := h.sys.List(r.Context(), facilityID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, reports)
}

// Download streams a stored report workbook.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	facilityID, err := h.facility(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		err = faults.Validation("invalid report id %q", r.PathValue("id"))
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	body, err := h.sys.Download(r.Context(), facilityID, id, auth.Actor(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("report-%d-%s.xlsx", facilityID, id)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

func (h *Handler) facility(r *http.Request) (int64, error) {
	facilityID, err := handlers.PathID(r, "facilityId")
	if err != nil {
		return 0, err
	}
	return facilityID, auth.Authorize(r.Context(), facilityID)
}
