package engine

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"adminkit/internal/schema"
)

// RegisterEntityRoutes mounts the five canonical routes for every
// compiled entity under /api/{tableName}, driven entirely by the route
// descriptors.
func RegisterEntityRoutes(app *fiber.App, h *Handler, compiled *schema.Compiled) error {
	api := app.Group("/api")

	for _, a := range compiled.All() {
		group := api.Group(a.Routes.BasePath)
		for _, rt := range a.Routes.Routes {
			handler, err := h.handlerFor(a, rt.Op)
			if err != nil {
				return err
			}
			group.Add(rt.Method, rt.Path, handler)
		}
	}

	return nil
}

func (h *Handler) handlerFor(a *schema.Artifacts, op schema.Operation) (fiber.Handler, error) {
	switch op {
	case schema.OpList:
		return h.List(a), nil
	case schema.OpGet:
		return h.Get(a), nil
	case schema.OpCreate:
		return h.Create(a), nil
	case schema.OpUpdate:
		return h.Update(a), nil
	case schema.OpDelete:
		return h.Delete(a), nil
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}
