package schema

import "adminkit/internal/metadata"

// Operation names the five canonical CRUD operations.
type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// SchemaRef names which part of the shared EntitySchema a route
// validates against. Route registration and the documentation generator
// both resolve refs against the same schema instance; they can never
// diverge.
type SchemaRef string

const (
	RefNone    SchemaRef = ""
	RefFull    SchemaRef = "full"
	RefPartial SchemaRef = "partial"
	RefIDOnly  SchemaRef = "id_only"
)

// Route describes one REST endpoint of an entity.
type Route struct {
	Op            Operation
	Method        string
	Path          string // Fiber-style, relative to the base path
	DocPath       string // OpenAPI-style, relative to the base path
	Query         SchemaRef
	Params        SchemaRef
	Body          SchemaRef
	SuccessStatus int
	Summary       string
	ReturnsList   bool
	ReturnsRecord bool
}

// RouteSet binds the canonical operations to an entity's base path.
type RouteSet struct {
	Entity   *metadata.Entity
	BasePath string // "/{tableName}"
	Routes   []Route
}

// RoutesFor derives the canonical five-operation set for an entity.
func RoutesFor(entity *metadata.Entity) RouteSet {
	singular := entity.Display.Singular
	return RouteSet{
		Entity:   entity,
		BasePath: "/" + entity.DBConfig.TableName,
		Routes: []Route{
			{
				Op: OpList, Method: "GET", Path: "/", DocPath: "",
				Query:         RefPartial,
				SuccessStatus: 200,
				Summary:       "List " + entity.Display.Plural,
				ReturnsList:   true,
			},
			{
				Op: OpGet, Method: "GET", Path: "/:id", DocPath: "/{id}",
				Params:        RefIDOnly,
				SuccessStatus: 200,
				Summary:       "Get a " + singular + " by id",
				ReturnsRecord: true,
			},
			{
				Op: OpCreate, Method: "POST", Path: "/", DocPath: "",
				Body:          RefFull,
				SuccessStatus: 201,
				Summary:       "Create a " + singular,
				ReturnsRecord: true,
			},
			{
				Op: OpUpdate, Method: "PATCH", Path: "/:id", DocPath: "/{id}",
				Params:        RefIDOnly,
				Body:          RefPartial,
				SuccessStatus: 200,
				Summary:       "Update a " + singular,
				ReturnsRecord: true,
			},
			{
				Op: OpDelete, Method: "DELETE", Path: "/:id", DocPath: "/{id}",
				Params:        RefIDOnly,
				SuccessStatus: 200,
				Summary:       "Delete a " + singular,
			},
		},
	}
}
