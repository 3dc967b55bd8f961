package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"adminkit/internal/config"
	"adminkit/internal/docs"
	"adminkit/internal/engine"
	"adminkit/internal/entities"
	"adminkit/internal/schema"
	"adminkit/internal/store"
	"adminkit/internal/ui"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db: %s/%s)", cfg.Server.Port, cfg.Database.Driver, cfg.Database.Name)

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Build the entity registry
	registry, err := entities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to build entity registry: %v", err)
	}

	// 4. Compile schemas, table definitions and route descriptors
	compiled, err := schema.Compile(registry, db.Dialect)
	if err != nil {
		log.Fatalf("Failed to compile entities: %v", err)
	}
	log.Printf("Compiled %d entities", len(compiled.All()))

	// 5. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.Origin,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window(),
	}))

	// 6. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 7. API documentation
	docs.Register(app, docs.Generate(compiled))

	// 8. UI meta endpoints
	if err := ui.Register(app, compiled); err != nil {
		log.Fatalf("Failed to register meta routes: %v", err)
	}

	// 9. Entity CRUD routes
	handler := engine.NewHandler(db)
	if err := engine.RegisterEntityRoutes(app, handler, compiled); err != nil {
		log.Fatalf("Failed to register entity routes: %v", err)
	}

	// 10. Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(engine.Failure("Internal server error", code))
}
