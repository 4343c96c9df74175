package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"lira-converter/internal/common/config"
	"lira-converter/internal/common/middleware"
	"lira-converter/internal/converter/graph"
	"lira-converter/internal/converter/handlers"
	"lira-converter/internal/converter/repository"
	"lira-converter/internal/converter/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Converter Service
// ============================================================

func main() {
	cfg := config.Load()

	if _, err := graph.ParseStrategy(cfg.IndexStrategy); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Accuracy <= 0 {
		log.Fatalf("config: POINT_ACCURACY must be positive, got %v", cfg.Accuracy)
	}

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.MigrationsPath); err != nil {
		log.Fatalf("init db: %v", err)
	}

	fileStorage := service.NewFileStorage(cfg.StorageRoot)
	convertHandler := handlers.NewConvertHandler(repo, fileStorage, cfg)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
		AppName:      "LIRA Converter Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Routes
	// ============================================================

	handlers.Register(app, convertHandler, db)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting LIRA Converter Service on %s (env: %s, index: %s, accuracy: %v)",
		addr, cfg.Environment, cfg.IndexStrategy, cfg.Accuracy)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
