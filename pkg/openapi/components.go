package openapi

import "maps"

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}

// NewComponents creates Components with shared schemas and error responses.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error":  {Type: "string", Description: "Error message"},
					"kind":   {Type: "string", Description: "Error kind", Enum: []any{"not_found", "invalid_override", "validation", "conflict"}},
					"values": {Type: "array", Description: "Offending values named by the error", Items: &Schema{}},
				},
				Required: []string{"error"},
			},
			"WindowResult": {
				Type: "object",
				Properties: map[string]*Schema{
					"items":       {Type: "array", Items: &Schema{Type: "object"}},
					"total_count": {Type: "integer", Description: "Total records matching the filter"},
					"skip":        {Type: "integer"},
					"limit":       {Type: "integer"},
					"has_next":    {Type: "boolean", Description: "True when skip + limit < total_count"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":          errorResponse("Invalid request or override identical to the default"),
			"Unauthorized":        errorResponse("Missing or invalid credentials"),
			"Forbidden":           errorResponse("Facility not accessible to the caller"),
			"NotFound":            errorResponse("Resource not found"),
			"Conflict":            errorResponse("Concurrent modification or duplicate"),
			"UnprocessableEntity": errorResponse("Validation failed"),
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
