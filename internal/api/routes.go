/**
 * @description
 * API Route definitions.
 * Sets up the router groups and assigns handlers.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/services
 * - backend/internal/store
 */

package api

import (
	"github.com/dexmark-project/backend/internal/api/handlers"
	"github.com/dexmark-project/backend/internal/cache"
	"github.com/dexmark-project/backend/internal/services"
	"github.com/dexmark-project/backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all API routes.
// cacheMode names the active cache backend ("memory" or "redis") for health output.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheStore cache.Store, cacheMode string) {
	// 1. Initialize Services
	benchmarkService := services.NewBenchmarkService(store.NewPostgres(db), cacheStore)

	// 2. Initialize Handlers
	benchmarkHandler := handlers.NewBenchmarkHandler(benchmarkService)

	// 3. Define Routes
	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "dexmark-backend",
			"cache":   cacheMode,
		})
	})

	benchmark := v1.Group("/benchmark")
	benchmark.Get("/detailed-results", benchmarkHandler.GetDetailedResults)
	benchmark.Get("/win-rates", benchmarkHandler.GetWinRates)
}
