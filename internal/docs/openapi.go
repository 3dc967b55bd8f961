// Package docs generates the OpenAPI 3.0 document for the entity
// registry. It consumes the compiled artifacts, the same schema
// instances that back wire validation, and never re-derives anything.
package docs

import (
	"github.com/gofiber/fiber/v2"

	"adminkit/internal/metadata"
	"adminkit/internal/schema"
)

type Document struct {
	OpenAPI      string               `json:"openapi"`
	Info         Info                 `json:"info"`
	Tags         []Tag                `json:"tags,omitempty"`
	Paths        map[string]PathItem  `json:"paths"`
	Components   Components           `json:"components"`
	ExternalDocs *ExternalDocs        `json:"externalDocs,omitempty"`
}

type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// PathItem maps lowercase HTTP methods to operations.
type PathItem map[string]*OperationObject

type OperationObject struct {
	Tags        []string            `json:"tags,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	OperationID string              `json:"operationId,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

type Parameter struct {
	Name     string        `json:"name"`
	In       string        `json:"in"`
	Required bool          `json:"required,omitempty"`
	Schema   *SchemaObject `json:"schema,omitempty"`
}

type RequestBody struct {
	Required bool                 `json:"required,omitempty"`
	Content  map[string]MediaType `json:"content"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

type MediaType struct {
	Schema *SchemaObject `json:"schema,omitempty"`
}

type SchemaObject struct {
	Ref        string                   `json:"$ref,omitempty"`
	Type       string                   `json:"type,omitempty"`
	Format     string                   `json:"format,omitempty"`
	Nullable   bool                     `json:"nullable,omitempty"`
	Enum       []string                 `json:"enum,omitempty"`
	Items      *SchemaObject            `json:"items,omitempty"`
	Properties map[string]*SchemaObject `json:"properties,omitempty"`
	Required   []string                 `json:"required,omitempty"`
}

type Components struct {
	Schemas map[string]*SchemaObject `json:"schemas"`
}

// Generate builds the document by iterating the compiled registry and
// emitting the five canonical operations per entity.
func Generate(compiled *schema.Compiled) *Document {
	doc := &Document{
		OpenAPI: "3.0.0",
		Info:    Info{Title: "Admin API", Version: "1.0.0"},
		Paths:   make(map[string]PathItem),
		Components: Components{
			Schemas: make(map[string]*SchemaObject),
		},
		ExternalDocs: &ExternalDocs{
			Description: "View the raw OpenAPI specification in JSON format",
			URL:         "/swagger.json",
		},
	}

	for _, a := range compiled.All() {
		entity := a.Entity
		doc.Tags = append(doc.Tags, Tag{
			Name:        entity.Display.Plural,
			Description: entity.Display.Description,
		})

		name := entity.Display.Singular
		doc.Components.Schemas[name] = entityComponent(entity, true)
		doc.Components.Schemas[name+"Partial"] = entityComponent(entity, false)

		for _, rt := range a.Routes.Routes {
			path := "/api" + a.Routes.BasePath + rt.DocPath
			item, ok := doc.Paths[path]
			if !ok {
				item = make(PathItem)
				doc.Paths[path] = item
			}
			item[methodKey(rt.Method)] = operation(a, rt, name)
		}
	}

	return doc
}

func methodKey(method string) string {
	switch method {
	case "GET":
		return "get"
	case "POST":
		return "post"
	case "PATCH":
		return "patch"
	case "DELETE":
		return "delete"
	case "PUT":
		return "put"
	default:
		return method
	}
}

func operation(a *schema.Artifacts, rt schema.Route, componentName string) *OperationObject {
	entity := a.Entity
	op := &OperationObject{
		Tags:        []string{entity.Display.Plural},
		Summary:     rt.Summary,
		OperationID: string(rt.Op) + "_" + entity.Key,
		Responses:   make(map[string]Response),
	}

	if rt.Params == schema.RefIDOnly {
		op.Parameters = append(op.Parameters, Parameter{
			Name: "id", In: "path", Required: true,
			Schema: &SchemaObject{Type: "string"},
		})
	}

	if rt.Query == schema.RefPartial {
		for i := range entity.Fields {
			f := &entity.Fields[i]
			op.Parameters = append(op.Parameters, Parameter{
				Name: f.DBConfig.ColumnName, In: "query",
				Schema: fieldSchema(f),
			})
		}
	}

	switch rt.Body {
	case schema.RefFull:
		op.RequestBody = &RequestBody{
			Required: true,
			Content: map[string]MediaType{
				"application/json": {Schema: &SchemaObject{Ref: "#/components/schemas/" + componentName}},
			},
		}
	case schema.RefPartial:
		op.RequestBody = &RequestBody{
			Content: map[string]MediaType{
				"application/json": {Schema: &SchemaObject{Ref: "#/components/schemas/" + componentName + "Partial"}},
			},
		}
	}

	var payload *SchemaObject
	switch {
	case rt.ReturnsList:
		payload = &SchemaObject{
			Type:  "array",
			Items: &SchemaObject{Ref: "#/components/schemas/" + componentName},
		}
	case rt.ReturnsRecord:
		payload = &SchemaObject{Ref: "#/components/schemas/" + componentName}
	}

	op.Responses[statusKey(rt.SuccessStatus)] = Response{
		Description: "Success",
		Content: map[string]MediaType{
			"application/json": {Schema: envelopeSchema(payload)},
		},
	}
	op.Responses["400"] = Response{Description: "Validation failed"}
	if rt.Params == schema.RefIDOnly {
		op.Responses["404"] = Response{Description: "Record not found"}
	}
	op.Responses["500"] = Response{Description: "Internal server error"}

	return op
}

func statusKey(status int) string {
	switch status {
	case 200:
		return "200"
	case 201:
		return "201"
	default:
		return "200"
	}
}

// envelopeSchema wraps a payload schema in the uniform outcome envelope.
func envelopeSchema(payload *SchemaObject) *SchemaObject {
	if payload == nil {
		payload = &SchemaObject{Nullable: true}
	}
	return &SchemaObject{
		Type: "object",
		Properties: map[string]*SchemaObject{
			"succeeded":      {Type: "boolean"},
			"message":        {Type: "string"},
			"responseObject": payload,
			"statusCode":     {Type: "integer"},
		},
		Required: []string{"succeeded", "message", "statusCode"},
	}
}

// entityComponent derives the object schema for an entity. When full is
// false every property is optional (the PATCH body shape).
func entityComponent(entity *metadata.Entity, full bool) *SchemaObject {
	obj := &SchemaObject{
		Type:       "object",
		Properties: make(map[string]*SchemaObject, len(entity.Fields)),
	}
	for i := range entity.Fields {
		f := &entity.Fields[i]
		obj.Properties[f.DBConfig.ColumnName] = fieldSchema(f)
		if full && !f.DBConfig.Nullable && !f.Input.ReadOnly && f.DBConfig.ColumnName != "id" {
			obj.Required = append(obj.Required, f.DBConfig.ColumnName)
		}
	}
	return obj
}

func fieldSchema(f *metadata.Field) *SchemaObject {
	s := &SchemaObject{Nullable: f.DBConfig.Nullable}
	switch f.DBConfig.Type {
	case metadata.TypeBoolean:
		s.Type = "boolean"
	case metadata.TypeChar, metadata.TypeVarchar, metadata.TypeText:
		s.Type = "string"
	case metadata.TypeSmallint, metadata.TypeInteger:
		s.Type = "integer"
	case metadata.TypeFloat:
		s.Type = "number"
		s.Format = "double"
	case metadata.TypeDate:
		s.Type = "string"
		s.Format = "date"
	case metadata.TypeTimestamp, metadata.TypeTimestamptz:
		s.Type = "string"
		s.Format = "date-time"
	case metadata.TypeUUID:
		s.Type = "string"
		s.Format = "uuid"
	case metadata.TypeJSONB:
		// arbitrary JSON value, stored canonically as a string
	}
	if f.Input.Kind == metadata.InputSelect {
		s.Enum = f.Input.SelectValues()
	}
	return s
}

const swaggerHTML = `<!DOCTYPE html>
<html>
<head>
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: "/swagger.json", dom_id: "#swagger-ui" });
  </script>
</body>
</html>`

// Register mounts the documentation routes: the raw JSON document and a
// minimal Swagger UI page.
func Register(app *fiber.App, doc *Document) {
	app.Get("/swagger.json", func(c *fiber.Ctx) error {
		return c.JSON(doc)
	})
	app.Get("/api-docs", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(swaggerHTML)
	})
}
