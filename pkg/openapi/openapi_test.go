package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/optigate/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Components == nil || spec.Paths == nil {
		t.Fatal("components and paths should be initialized")
	}

	spec.AddServer("http://localhost:8080")
	spec.SetDescription("A test API")

	if len(spec.Servers) != 1 || spec.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("servers: got %+v", spec.Servers)
	}
	if spec.Info.Description != "A test API" {
		t.Errorf("description: got %s", spec.Info.Description)
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	get := &openapi.Operation{Summary: "get"}
	put := &openapi.Operation{Summary: "put"}

	spec.AddOperation("/analysis-settings/{ledgerId}", "GET", get)
	spec.AddOperation("/analysis-settings/{ledgerId}", "put", put)
	spec.AddOperation("/analysis-settings/{ledgerId}", "PATCH", &openapi.Operation{})

	item := spec.Paths["/analysis-settings/{ledgerId}"]
	if item == nil {
		t.Fatal("path item missing")
	}
	if item.Get != get || item.Put != put {
		t.Errorf("operations not attached: %+v", item)
	}
	if item.Post != nil || item.Delete != nil {
		t.Errorf("unexpected operations: %+v", item)
	}
}

func TestRefs(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"schema ref", openapi.SchemaRef("Setting").Ref, "#/components/schemas/Setting"},
		{"response ref", openapi.ResponseRef("NotFound").Ref, "#/components/responses/NotFound"},
		{"request body", openapi.RequestBodyJSON("SetIncludedCommand", true).Content["application/json"].Schema.Ref, "#/components/schemas/SetIncludedCommand"},
		{"response body", openapi.ResponseJSON("Success", "Setting").Content["application/json"].Schema.Ref, "#/components/schemas/Setting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		name       string
		param      *openapi.Parameter
		wantIn     string
		wantType   string
		wantFormat string
		required   bool
	}{
		{"int64 path", openapi.PathParam("ledgerId", "Ledger entry ID"), "path", "integer", "int64", true},
		{"uuid path", openapi.UUIDPathParam("id", "Report ID"), "path", "string", "uuid", true},
		{"query", openapi.QueryParam("classification_id", "integer", "Filter", false), "query", "integer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.param
			if p.In != tt.wantIn || p.Required != tt.required {
				t.Errorf("in/required: got %s/%v", p.In, p.Required)
			}
			if p.Schema.Type != tt.wantType || p.Schema.Format != tt.wantFormat {
				t.Errorf("schema: got type=%s format=%s", p.Schema.Type, p.Schema.Format)
			}
		})
	}

	window := openapi.WindowParams()
	if len(window) != 2 || window[0].Name != "skip" || window[1].Name != "limit" {
		t.Errorf("window params: got %+v", window)
	}
}

func TestErrorResponses(t *testing.T) {
	responses := openapi.ErrorResponses(400, 404, 422, 418)

	if len(responses) != 3 {
		t.Fatalf("responses: got %d, want 3", len(responses))
	}
	if responses[422].Ref != "#/components/responses/UnprocessableEntity" {
		t.Errorf("422 ref: got %s", responses[422].Ref)
	}
}

func TestResponses(t *testing.T) {
	ok := openapi.ResponseJSON("Created", "Setting")
	responses := openapi.Responses(201, ok, 404)

	if responses[201] != ok {
		t.Error("success response not keyed by status")
	}
	if responses[404] == nil || len(responses) != 2 {
		t.Errorf("responses: got %v", responses)
	}
}

func TestNewComponentsDefaults(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"Error", "WindowResult"} {
		if _, ok := c.Schemas[name]; !ok {
			t.Errorf("missing default schema: %s", name)
		}
	}

	for _, name := range []string{"BadRequest", "Unauthorized", "Forbidden", "NotFound", "Conflict", "UnprocessableEntity"} {
		if _, ok := c.Responses[name]; !ok {
			t.Errorf("missing default response: %s", name)
		}
	}

	c.AddSchemas(map[string]*openapi.Schema{"Setting": {Type: "object"}})
	if _, ok := c.Schemas["Setting"]; !ok {
		t.Error("Setting schema not added")
	}
	if _, ok := c.Schemas["Error"]; !ok {
		t.Error("default Error schema should still exist")
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("body unmarshal failed: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi: got %v", parsed["openapi"])
	}
}

func TestConfig(t *testing.T) {
	cfg := openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Title != "Optigate API" {
		t.Errorf("title: got %s, want Optigate API", cfg.Title)
	}

	t.Setenv("TEST_TITLE", "Custom API")
	env := &openapi.ConfigEnv{Title: "TEST_TITLE"}

	custom := openapi.Config{}
	if err := custom.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if custom.Title != "Custom API" {
		t.Errorf("title: got %s, want Custom API", custom.Title)
	}

	custom.Merge(&openapi.Config{Description: "Overlay"})
	if custom.Description != "Overlay" || custom.Title != "Custom API" {
		t.Errorf("merge: got %+v", custom)
	}
}

func TestConfigApply(t *testing.T) {
	t.Setenv("TEST_OPENAPI_SERVERS", "https://gw.example.org/api, ,https://alt.example.org/api")

	cfg := openapi.Config{}
	if err := cfg.Finalize(&openapi.ConfigEnv{Servers: "TEST_OPENAPI_SERVERS"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	spec := openapi.NewSpec(cfg.Title, "1.0.0")
	cfg.Apply(spec, "/api")

	if spec.Info.Title != "Optigate API" {
		t.Errorf("title: got %q", spec.Info.Title)
	}
	want := []string{"/api", "https://gw.example.org/api", "https://alt.example.org/api"}
	if len(spec.Servers) != len(want) {
		t.Fatalf("servers: got %+v", spec.Servers)
	}
	for i, s := range spec.Servers {
		if s.URL != want[i] {
			t.Errorf("server %d: got %q, want %q", i, s.URL, want[i])
		}
	}
}
