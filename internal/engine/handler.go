package engine

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"adminkit/internal/metadata"
	"adminkit/internal/schema"
	"adminkit/internal/store"
)

// Handler executes the five canonical operations against the storage
// backend. It is generic over entities: every method takes the compiled
// artifacts of the entity whose route was hit.
type Handler struct {
	store   *store.Store
	ensurer *store.TableEnsurer
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s, ensurer: store.NewTableEnsurer(s)}
}

// List handles GET /api/:table. Query parameters become an
// equality-conjunction filter validated against the partial schema.
func (h *Handler) List(a *schema.Artifacts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters := make(map[string]any)
		for key, val := range c.Queries() {
			field := a.Entity.GetFieldByColumn(key)
			if field == nil {
				return respond(c, Failure(fmt.Sprintf("Unknown filter field: %s", key), 400))
			}
			coerced, err := coerceQueryValue(field, val)
			if err != nil {
				return respond(c, Failure(fmt.Sprintf("Invalid filter value for %s", key), 400))
			}
			filters[key] = coerced
		}

		normalized, violations := a.Schema.Partial.Validate(filters)
		if len(violations) > 0 {
			return respond(c, Failure(schema.JoinViolations(violations), 400))
		}

		pb := h.store.Dialect.NewParamBuilder()
		sqlStr := "SELECT * FROM " + a.Entity.DBConfig.TableName

		var where []string
		for _, column := range a.Entity.ColumnNames() {
			val, ok := normalized[column]
			if !ok {
				continue
			}
			where = append(where, fmt.Sprintf("%s = %s", column, pb.Add(val)))
		}
		if len(where) > 0 {
			sqlStr += " WHERE " + strings.Join(where, " AND ")
		}

		rows, err := store.QueryRows(c.Context(), h.store.DB, sqlStr, pb.Params()...)
		if err != nil {
			log.Printf("ERROR: list %s: %v", a.Entity.Key, err)
			return respond(c, Failure("Failed to fetch records", 500))
		}
		h.normalizeRows(a, rows)
		if rows == nil {
			rows = []map[string]any{}
		}

		return respond(c, Success("Records found", rows, 200))
	}
}

// Get handles GET /api/:table/:id.
func (h *Handler) Get(a *schema.Artifacts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := a.Schema.IDOnly.Validate(c.Params("id"))
		if err != nil {
			return respond(c, Failure("Invalid input: "+err.Error(), 400))
		}

		row, err := h.fetchRecord(c, a, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return respond(c, Failure("Record not found", 404))
			}
			log.Printf("ERROR: get %s/%s: %v", a.Entity.Key, id, err)
			return respond(c, Failure("Failed to fetch record", 500))
		}

		return respond(c, Success("Record found", row, 200))
	}
}

// Create handles POST /api/:table. The first write for an entity creates
// its table from the generated definition.
func (h *Handler) Create(a *schema.Artifacts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]any
		if err := c.BodyParser(&body); err != nil {
			return respond(c, Failure("Invalid JSON body", 400))
		}

		record, violations := a.Schema.Full.Validate(body)
		if len(violations) > 0 {
			return respond(c, Failure(schema.JoinViolations(violations), 400))
		}

		if err := h.ensurer.Ensure(c.Context(), a.Entity.DBConfig.TableName, a.TableSQL); err != nil {
			log.Printf("ERROR: ensure table %s: %v", a.Entity.DBConfig.TableName, err)
			return respond(c, Failure("Failed to create record", 500))
		}

		// The id is server-assigned only when the column is a uuid; any
		// other id type must arrive with the payload, which the full
		// schema already enforced.
		if _, ok := record["id"]; !ok && a.Entity.IDField().DBConfig.Type == metadata.TypeUUID {
			record["id"] = uuid.NewString()
		}

		pb := h.store.Dialect.NewParamBuilder()
		var columns, placeholders []string
		for _, column := range a.Entity.ColumnNames() {
			val, ok := record[column]
			if !ok {
				continue
			}
			columns = append(columns, column)
			placeholders = append(placeholders, pb.Add(val))
		}

		sqlStr := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			a.Entity.DBConfig.TableName,
			strings.Join(columns, ", "),
			strings.Join(placeholders, ", "))

		if _, err := store.Exec(c.Context(), h.store.DB, sqlStr, pb.Params()...); err != nil {
			log.Printf("ERROR: create %s: %v", a.Entity.Key, err)
			return respond(c, Failure("Failed to create record", 500))
		}

		row, err := h.fetchRecord(c, a, record["id"])
		if err != nil {
			log.Printf("ERROR: fetch created %s: %v", a.Entity.Key, err)
			return respond(c, Failure("Failed to create record", 500))
		}

		return respond(c, Success("Record created", row, 201))
	}
}

// Update handles PATCH /api/:table/:id. An empty body is valid: the row
// is returned unchanged.
func (h *Handler) Update(a *schema.Artifacts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := a.Schema.IDOnly.Validate(c.Params("id"))
		if err != nil {
			return respond(c, Failure("Invalid input: "+err.Error(), 400))
		}

		body := make(map[string]any)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return respond(c, Failure("Invalid JSON body", 400))
			}
		}

		record, violations := a.Schema.Partial.Validate(body)
		if len(violations) > 0 {
			return respond(c, Failure(schema.JoinViolations(violations), 400))
		}
		delete(record, "id") // the identifier is immutable

		if len(record) > 0 {
			pb := h.store.Dialect.NewParamBuilder()
			var set []string
			for _, column := range a.Entity.ColumnNames() {
				val, ok := record[column]
				if !ok {
					continue
				}
				set = append(set, fmt.Sprintf("%s = %s", column, pb.Add(val)))
			}
			sqlStr := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
				a.Entity.DBConfig.TableName, strings.Join(set, ", "), pb.Add(id))

			affected, err := store.Exec(c.Context(), h.store.DB, sqlStr, pb.Params()...)
			if err != nil {
				log.Printf("ERROR: update %s/%s: %v", a.Entity.Key, id, err)
				return respond(c, Failure("Failed to update record", 500))
			}
			if affected == 0 {
				return respond(c, Failure("Record not found", 404))
			}
		}

		row, err := h.fetchRecord(c, a, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return respond(c, Failure("Record not found", 404))
			}
			log.Printf("ERROR: fetch updated %s/%s: %v", a.Entity.Key, id, err)
			return respond(c, Failure("Failed to update record", 500))
		}

		return respond(c, Success("Record updated", row, 200))
	}
}

// Delete handles DELETE /api/:table/:id. Deleting an absent row is
// not-found every time; the operation never succeeds twice.
func (h *Handler) Delete(a *schema.Artifacts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := a.Schema.IDOnly.Validate(c.Params("id"))
		if err != nil {
			return respond(c, Failure("Invalid input: "+err.Error(), 400))
		}

		pb := h.store.Dialect.NewParamBuilder()
		sqlStr := fmt.Sprintf("DELETE FROM %s WHERE id = %s",
			a.Entity.DBConfig.TableName, pb.Add(id))

		affected, err := store.Exec(c.Context(), h.store.DB, sqlStr, pb.Params()...)
		if err != nil {
			log.Printf("ERROR: delete %s/%s: %v", a.Entity.Key, id, err)
			return respond(c, Failure("Failed to delete record", 500))
		}
		if affected == 0 {
			return respond(c, Failure("Record not found", 404))
		}

		return respond(c, Success("Record deleted", nil, 200))
	}
}

func (h *Handler) fetchRecord(c *fiber.Ctx, a *schema.Artifacts, id any) (map[string]any, error) {
	pb := h.store.Dialect.NewParamBuilder()
	sqlStr := fmt.Sprintf("SELECT * FROM %s WHERE id = %s",
		a.Entity.DBConfig.TableName, pb.Add(id))

	row, err := store.QueryRow(c.Context(), h.store.DB, sqlStr, pb.Params()...)
	if err != nil {
		return nil, err
	}
	h.normalizeRows(a, []map[string]any{row})
	return row, nil
}

// normalizeRows converts stored forms back into API values: integer
// booleans (SQLite), temporal strings and canonical jsonb encodings.
func (h *Handler) normalizeRows(a *schema.Artifacts, rows []map[string]any) {
	if h.store.Dialect.NeedsBoolFix() {
		store.NormalizeBooleans(rows, a.BoolColumns())
	}
	store.NormalizeTimes(rows, a.TimeColumns())
	store.DecodeJSONColumns(rows, a.JSONColumns())
}

// coerceQueryValue converts a string query parameter to the Go type the
// column's validation rule expects.
func coerceQueryValue(field *metadata.Field, val string) (any, error) {
	switch field.DBConfig.Type {
	case metadata.TypeSmallint, metadata.TypeInteger:
		return strconv.Atoi(val)
	case metadata.TypeFloat:
		return strconv.ParseFloat(val, 64)
	case metadata.TypeBoolean:
		return strconv.ParseBool(val)
	default:
		return val, nil
	}
}
