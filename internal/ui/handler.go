package ui

import (
	"github.com/gofiber/fiber/v2"

	"adminkit/internal/metadata"
	"adminkit/internal/schema"
)

// EntitySummary is the list-view payload of the meta index endpoint.
type EntitySummary struct {
	Key      string           `json:"key"`
	Display  metadata.Display `json:"display"`
	BasePath string           `json:"base_path"`
}

// EntityMeta is the full render description of one entity: everything
// the frontend needs to draw the table and the create/edit form.
type EntityMeta struct {
	EntitySummary
	Columns []Column    `json:"columns"`
	Form    []FormField `json:"form"`
}

// Register mounts the meta endpoints under /api/_meta. All descriptors
// are derived once at startup; a field with an unsupported input kind
// fails registration instead of a request.
func Register(app *fiber.App, compiled *schema.Compiled) error {
	var summaries []EntitySummary
	byKey := make(map[string]*EntityMeta)

	for _, a := range compiled.All() {
		form, err := FormFields(a.Entity)
		if err != nil {
			return err
		}
		summary := EntitySummary{
			Key:      a.Entity.Key,
			Display:  a.Entity.Display,
			BasePath: "/api" + a.Routes.BasePath,
		}
		summaries = append(summaries, summary)
		byKey[a.Entity.Key] = &EntityMeta{
			EntitySummary: summary,
			Columns:       Columns(a.Entity),
			Form:          form,
		}
	}

	meta := app.Group("/api/_meta")
	meta.Get("/entities", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"entities": summaries})
	})
	meta.Get("/entities/:key", func(c *fiber.Ctx) error {
		m, ok := byKey[c.Params("key")]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown entity: " + c.Params("key"),
			})
		}
		return c.JSON(m)
	})

	return nil
}
