/**
 * @description
 * Main entry point for the Dexmark Benchmark Backend API.
 * Initializes the Fiber web server, loads configuration, and sets up routes.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2: Web framework
 * - github.com/dexmark-project/backend/internal/config: Config loader
 * - github.com/dexmark-project/backend/internal/db: Database connections
 *
 * @notes
 * - Connects to Postgres on startup; Redis is optional and only backs the
 *   aggregate cache when REDIS_URL is set. Without it (or when the connection
 *   fails) the service runs on the in-process cache.
 */

package main

import (
	"log"

	"github.com/dexmark-project/backend/internal/api"
	"github.com/dexmark-project/backend/internal/api/middleware"
	"github.com/dexmark-project/backend/internal/cache"
	"github.com/dexmark-project/backend/internal/config"
	"github.com/dexmark-project/backend/internal/db"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Database Connection
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// 3. Select Cache Backend
	var cacheStore cache.Store = cache.NewMemory(cfg.Cache.MaxEntries)
	cacheMode := "memory"
	if cfg.Redis.URL != "" {
		redisClient, err := db.ConnectRedis(cfg)
		if err != nil {
			log.Printf("⚠️ Redis unavailable (%v), falling back to in-process cache", err)
		} else {
			cacheStore = cache.NewRedis(redisClient)
			cacheMode = "redis"
		}
	}

	// 4. Initialize Fiber App
	app := fiber.New(fiber.Config{
		AppName:       "Dexmark Benchmark Dashboard",
		StrictRouting: true,
		CaseSensitive: true,
	})

	// 5. Global Middleware
	app.Use(recover.New())          // Panic recovery
	app.Use(logger.New())           // Request logging
	app.Use(middleware.RequestID()) // Correlation ids for error logs
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		AllowMethods: "GET, OPTIONS",
	}))

	// 6. Routes
	api.SetupRoutes(app, pgDB, cacheStore, cacheMode)

	// 7. Start Server
	log.Printf("🚀 Starting Dexmark Backend on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
