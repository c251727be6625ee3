package analysis

import "github.com/JaimeStill/optigate/pkg/openapi"

func schemas() map[string]*openapi.Schema {
	historyEntry := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"user_id":   {Type: "string"},
			"timestamp": {Type: "string", Example: "2025-01-31 09:30:00"},
			"note":      {Type: "string"},
		},
	}

	maxNote := MaxNoteLength

	return map[string]*openapi.Schema{
		"Setting": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"ledger_id":                    {Type: "integer", Format: "int64"},
				"facility_id":                  {Type: "integer", Format: "int64"},
				"model_number":                 {Type: "string"},
				"product_name":                 {Type: "string"},
				"maker_name":                   {Type: "string"},
				"default_classification_id":    {Type: "integer", Format: "int64"},
				"default_classification_name":  {Type: "string"},
				"default_classification_level": {Type: "integer"},
				"stock_quantity":               {Type: "integer"},
				"default_is_included":          {Type: "boolean"},
				"override_is_included":         {Type: "boolean"},
				"override_classification_id":   {Type: "integer", Format: "int64"},
				"effective_is_included":        {Type: "boolean"},
				"effective_classification_id":  {Type: "integer", Format: "int64"},
				"classification_name":          {Type: "string"},
				"classification_level":         {Type: "integer"},
				"has_override":                 {Type: "boolean"},
				"history":                      {Type: "array", Items: historyEntry},
				"version":                      {Type: "integer"},
				"last_modified_by":             {Type: "string"},
				"last_modified_at":             {Type: "string", Format: "date-time"},
			},
		},
		"SetIncludedCommand": {
			Type:     "object",
			Required: []string{"override_is_included", "note"},
			Properties: map[string]*openapi.Schema{
				"override_is_included": {Type: "boolean"},
				"note":                 {Type: "string", MaxLength: &maxNote},
			},
		},
		"SetClassificationCommand": {
			Type:     "object",
			Required: []string{"override_classification_id", "note"},
			Properties: map[string]*openapi.Schema{
				"override_classification_id": {Type: "integer", Format: "int64"},
				"note":                       {Type: "string", MaxLength: &maxNote},
			},
		},
		"SetIncludedResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"ledger_id":             {Type: "integer", Format: "int64"},
				"override_is_included":  {Type: "boolean"},
				"effective_is_included": {Type: "boolean"},
				"updated_at":            {Type: "string", Format: "date-time"},
				"history_length":        {Type: "integer"},
			},
		},
		"SetClassificationResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"ledger_id":                   {Type: "integer", Format: "int64"},
				"override_classification_id":  {Type: "integer", Format: "int64"},
				"effective_classification_id": {Type: "integer", Format: "int64"},
				"classification_name":         {Type: "string"},
				"updated_at":                  {Type: "string", Format: "date-time"},
				"history_length":              {Type: "integer"},
			},
		},
		"RestoreResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"affected_count": {Type: "integer"},
				"ledger_ids":     {Type: "array", Items: &openapi.Schema{Type: "integer", Format: "int64"}},
			},
		},
	}
}
