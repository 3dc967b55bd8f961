package engine_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"adminkit/internal/engine"
	"adminkit/internal/metadata"
	"adminkit/internal/schema"
	"adminkit/internal/store"
)

func clientsEntity() *metadata.Entity {
	return &metadata.Entity{
		Key:      "clients",
		DBConfig: metadata.DBConfig{TableName: "clients"},
		Display:  metadata.Display{Singular: "Client", Plural: "Clients"},
		Fields: []metadata.Field{
			{
				Key:      "id",
				DBConfig: metadata.FieldDBConfig{ColumnName: "id", Type: metadata.TypeUUID},
				Input:    metadata.InputOptions{Kind: metadata.InputUUID, Label: "ID", ReadOnly: true},
			},
			{
				Key:      "name",
				DBConfig: metadata.FieldDBConfig{ColumnName: "name", Type: metadata.TypeVarchar},
				Input:    metadata.InputOptions{Kind: metadata.InputText, Label: "Name", Required: true},
				Save: &metadata.SaveOptions{
					Trim: true,
					Validators: []metadata.Validator{
						metadata.MinLength(3, "Name must be at least 3 characters"),
					},
				},
			},
			{
				Key:      "status",
				DBConfig: metadata.FieldDBConfig{ColumnName: "status", Type: metadata.TypeVarchar},
				Input: metadata.InputOptions{
					Kind:  metadata.InputSelect,
					Label: "Status",
					SelectOptions: []metadata.SelectOption{
						{Label: "Active", Value: "active"},
						{Label: "Inactive", Value: "inactive"},
					},
				},
				Save: &metadata.SaveOptions{
					Validators: []metadata.Validator{
						metadata.OneOf([]string{"active", "inactive"}, "Invalid status"),
					},
				},
			},
			{
				Key:      "verified",
				DBConfig: metadata.FieldDBConfig{ColumnName: "verified", Type: metadata.TypeBoolean},
				Input:    metadata.InputOptions{Kind: metadata.InputCheckbox, Label: "Verified"},
			},
			{
				Key:      "address",
				DBConfig: metadata.FieldDBConfig{ColumnName: "address", Type: metadata.TypeVarchar, Nullable: true},
				Input:    metadata.InputOptions{Kind: metadata.InputText, Label: "Address"},
			},
			{
				Key:      "files",
				DBConfig: metadata.FieldDBConfig{ColumnName: "files", Type: metadata.TypeJSONB, Nullable: true},
				Input:    metadata.InputOptions{Kind: metadata.InputJSON, Label: "Files"},
			},
		},
	}
}

func ticketsEntity() *metadata.Entity {
	return &metadata.Entity{
		Key:      "tickets",
		DBConfig: metadata.DBConfig{TableName: "tickets"},
		Display:  metadata.Display{Singular: "Ticket", Plural: "Tickets"},
		Fields: []metadata.Field{
			{
				Key:      "id",
				DBConfig: metadata.FieldDBConfig{ColumnName: "id", Type: metadata.TypeInteger},
				Input:    metadata.InputOptions{Kind: metadata.InputNumber, Label: "ID"},
			},
			{
				Key:      "subject",
				DBConfig: metadata.FieldDBConfig{ColumnName: "subject", Type: metadata.TypeVarchar},
				Input:    metadata.InputOptions{Kind: metadata.InputText, Label: "Subject", Required: true},
			},
		},
	}
}

func appFor(t *testing.T, entities ...*metadata.Entity) *fiber.App {
	t.Helper()
	ctx := context.Background()

	s, err := store.NewSQLiteMemory(ctx)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(s.Close)

	reg, err := metadata.NewRegistry(entities...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	compiled, err := schema.Compile(reg, s.Dialect)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	app := fiber.New()
	if err := engine.RegisterEntityRoutes(app, engine.NewHandler(s), compiled); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return app
}

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	return appFor(t, clientsEntity())
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("execute request: %v", err)
	}
	return resp
}

type envelope struct {
	Succeeded      bool            `json:"succeeded"`
	Message        string          `json:"message"`
	ResponseObject json.RawMessage `json:"responseObject"`
	StatusCode     int             `json:"statusCode"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, b)
	}
	if env.StatusCode != resp.StatusCode {
		t.Fatalf("envelope status %d does not match HTTP status %d", env.StatusCode, resp.StatusCode)
	}
	return env
}

func decodeRecord(t *testing.T, env envelope) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(env.ResponseObject, &rec); err != nil {
		t.Fatalf("decode record: %v (%s)", err, env.ResponseObject)
	}
	return rec
}

func createClient(t *testing.T, app *fiber.App, payload map[string]any) map[string]any {
	t.Helper()
	resp := doRequest(t, app, "POST", "/api/clients/", payload)
	if resp.StatusCode != 201 {
		env := decodeEnvelope(t, resp)
		t.Fatalf("create failed: %d %s", resp.StatusCode, env.Message)
	}
	return decodeRecord(t, decodeEnvelope(t, resp))
}

func TestCreate_AssignsIDAndReturns201(t *testing.T) {
	app := testApp(t)

	rec := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": true,
	})
	id, _ := rec["id"].(string)
	if id == "" {
		t.Fatalf("expected a generated id, got %v", rec["id"])
	}
	if rec["name"] != "Acme Corp" || rec["status"] != "active" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["verified"] != true {
		t.Fatalf("boolean came back as %v (%T)", rec["verified"], rec["verified"])
	}
}

func TestCreate_InvalidStatus(t *testing.T) {
	app := testApp(t)

	resp := doRequest(t, app, "POST", "/api/clients/", map[string]any{
		"name": "Acme Corp", "status": "pending", "verified": false,
	})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 400 || env.Succeeded {
		t.Fatalf("expected 400 failure, got %d %+v", resp.StatusCode, env)
	}
	if !strings.Contains(env.Message, "Invalid status") {
		t.Fatalf("expected custom validator message, got %q", env.Message)
	}
}

func TestCreate_MissingRequiredField(t *testing.T) {
	app := testApp(t)

	resp := doRequest(t, app, "POST", "/api/clients/", map[string]any{
		"status": "active", "verified": false,
	})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(env.Message, "Invalid input: ") || !strings.Contains(env.Message, "Name is required") {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestCreate_MalformedJSON(t *testing.T) {
	app := testApp(t)

	req, _ := http.NewRequest("POST", "/api/clients/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("execute request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	app := testApp(t)
	created := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
	})

	resp := doRequest(t, app, "GET", "/api/clients/"+created["id"].(string), nil)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 200 || !env.Succeeded {
		t.Fatalf("expected 200 success, got %d %+v", resp.StatusCode, env)
	}
	rec := decodeRecord(t, env)
	if rec["id"] != created["id"] || rec["name"] != "Acme Corp" {
		t.Fatalf("round trip mismatch: %v vs %v", rec, created)
	}
}

func TestGet_NotFound(t *testing.T) {
	app := testApp(t)
	// A write creates the table; otherwise the lookup fails on a missing
	// relation instead of a missing row.
	createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
	})

	resp := doRequest(t, app, "GET", "/api/clients/550e8400-e29b-41d4-a716-446655440000", nil)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 404 || env.Message != "Record not found" {
		t.Fatalf("expected 404 Record not found, got %d %q", resp.StatusCode, env.Message)
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	app := testApp(t)
	created := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
	})
	id := created["id"].(string)

	resp := doRequest(t, app, "PATCH", "/api/clients/"+id, map[string]any{"status": "inactive"})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d %q", resp.StatusCode, env.Message)
	}
	rec := decodeRecord(t, env)
	if rec["status"] != "inactive" {
		t.Fatalf("status not updated: %v", rec)
	}
	if rec["name"] != "Acme Corp" {
		t.Fatalf("untouched field changed: %v", rec)
	}
}

func TestUpdate_EmptyBodyReturnsUnchangedRow(t *testing.T) {
	app := testApp(t)
	created := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
	})
	id := created["id"].(string)

	resp := doRequest(t, app, "PATCH", "/api/clients/"+id, map[string]any{})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 on empty patch, got %d %q", resp.StatusCode, env.Message)
	}
	rec := decodeRecord(t, env)
	if rec["name"] != "Acme Corp" || rec["status"] != "active" {
		t.Fatalf("row changed on empty patch: %v", rec)
	}
}

func TestUpdate_UnknownFieldRejected(t *testing.T) {
	app := testApp(t)
	created := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
	})

	resp := doRequest(t, app, "PATCH", "/api/clients/"+created["id"].(string),
		map[string]any{"nickname": "ac"})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 400 || !strings.Contains(env.Message, "Unknown field: nickname") {
		t.Fatalf("expected unknown field rejection, got %d %q", resp.StatusCode, env.Message)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	app := testApp(t)
	createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
	})

	resp := doRequest(t, app, "PATCH", "/api/clients/550e8400-e29b-41d4-a716-446655440000",
		map[string]any{"status": "inactive"})
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDelete_NotIdempotent(t *testing.T) {
	app := testApp(t)
	created := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
	})
	id := created["id"].(string)

	resp := doRequest(t, app, "DELETE", "/api/clients/"+id, nil)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 200 || env.Message != "Record deleted" {
		t.Fatalf("expected 200 Record deleted, got %d %q", resp.StatusCode, env.Message)
	}
	if string(env.ResponseObject) != "null" {
		t.Fatalf("delete must carry a null response object, got %s", env.ResponseObject)
	}

	// Deleting the same row again reports not found.
	resp = doRequest(t, app, "DELETE", "/api/clients/"+id, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}

	resp = doRequest(t, app, "GET", "/api/clients/"+id, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestList_FiltersAreConjunctive(t *testing.T) {
	app := testApp(t)
	createClient(t, app, map[string]any{"name": "Acme Corp", "status": "active", "verified": true})
	createClient(t, app, map[string]any{"name": "Beta LLC", "status": "active", "verified": false})
	createClient(t, app, map[string]any{"name": "Gamma Inc", "status": "inactive", "verified": true})

	resp := doRequest(t, app, "GET", "/api/clients/?status=active&verified=true", nil)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d %q", resp.StatusCode, env.Message)
	}
	var rows []map[string]any
	if err := json.Unmarshal(env.ResponseObject, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "Acme Corp" {
		t.Fatalf("expected only Acme Corp, got %v", rows)
	}
	if rows[0]["verified"] != true {
		t.Fatalf("boolean not normalized in list: %v (%T)", rows[0]["verified"], rows[0]["verified"])
	}
}

func TestList_UnknownFilterField(t *testing.T) {
	app := testApp(t)
	resp := doRequest(t, app, "GET", "/api/clients/?nickname=ac", nil)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 400 || !strings.Contains(env.Message, "Unknown filter field: nickname") {
		t.Fatalf("expected unknown filter rejection, got %d %q", resp.StatusCode, env.Message)
	}
}

func TestList_InvalidFilterValue(t *testing.T) {
	app := testApp(t)
	resp := doRequest(t, app, "GET", "/api/clients/?verified=maybe", nil)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 400 || !strings.Contains(env.Message, "Invalid filter value for verified") {
		t.Fatalf("expected invalid filter value rejection, got %d %q", resp.StatusCode, env.Message)
	}
}

func TestCreate_IntegerIDMustBeSupplied(t *testing.T) {
	app := appFor(t, ticketsEntity())

	// The server only assigns uuid ids; an integer id omitted from the
	// payload is a validation failure, not a storage error.
	resp := doRequest(t, app, "POST", "/api/tickets/", map[string]any{"subject": "hello"})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 400 || !strings.Contains(env.Message, "ID is required") {
		t.Fatalf("expected 400 id requirement, got %d %q", resp.StatusCode, env.Message)
	}

	resp = doRequest(t, app, "POST", "/api/tickets/", map[string]any{"id": 7, "subject": "hello"})
	env = decodeEnvelope(t, resp)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201 with explicit id, got %d %q", resp.StatusCode, env.Message)
	}
	rec := decodeRecord(t, env)
	if rec["id"] != 7.0 || rec["subject"] != "hello" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestJSONBFieldRoundTripsAsValue(t *testing.T) {
	app := testApp(t)

	created := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
		"files": map[string]any{"count": 2, "names": []any{"a.txt"}},
	})
	files, ok := created["files"].(map[string]any)
	if !ok {
		t.Fatalf("files came back as %v (%T)", created["files"], created["files"])
	}
	if files["count"] != 2.0 {
		t.Fatalf("files = %v", files)
	}

	resp := doRequest(t, app, "GET", "/api/clients/"+created["id"].(string), nil)
	rec := decodeRecord(t, decodeEnvelope(t, resp))
	files, ok = rec["files"].(map[string]any)
	if !ok {
		t.Fatalf("fetched files came back as %v (%T)", rec["files"], rec["files"])
	}
	names, ok := files["names"].([]any)
	if !ok || len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("files = %v", files)
	}
}

func TestVarcharValueThatLooksLikeDateStaysString(t *testing.T) {
	app := testApp(t)

	created := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
		"address": "2024-06-01 12:30:00",
	})

	resp := doRequest(t, app, "GET", "/api/clients/"+created["id"].(string), nil)
	rec := decodeRecord(t, decodeEnvelope(t, resp))
	if rec["address"] != "2024-06-01 12:30:00" {
		t.Fatalf("address mangled: %v (%T)", rec["address"], rec["address"])
	}
}

func TestList_EmptyResultIsArray(t *testing.T) {
	app := testApp(t)
	// Create then delete so the table exists but is empty.
	created := createClient(t, app, map[string]any{
		"name": "Acme Corp", "status": "active", "verified": false,
	})
	doRequest(t, app, "DELETE", "/api/clients/"+created["id"].(string), nil)

	resp := doRequest(t, app, "GET", "/api/clients/", nil)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(env.ResponseObject) != "[]" {
		t.Fatalf("empty list must serialize as [], got %s", env.ResponseObject)
	}
}
