package server

import (
	"context"

	"emlak-scraper/internal/core/export"
	"emlak-scraper/internal/core/extract"
	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/core/scrape"
	"emlak-scraper/internal/health"
	"emlak-scraper/internal/platform/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Pinger is any dependency with a health probe.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type Dependencies struct {
	Jobs    *job.JobService
	Scrape  *scrape.Service
	LLM     extract.Generator
	Archive storage.Archiver
	Redis   Pinger
}

// RegisterRoutes mounts the API under /api and returns the health handler so
// the caller can flip readiness once startup is done.
func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	healthHandler := health.NewHealthHandler().AddCheck("store", d.Jobs.HealthCheck)
	if d.Redis != nil {
		healthHandler.AddCheck("redis", d.Redis.HealthCheck)
	}
	if d.LLM != nil && d.LLM.Enabled() {
		healthHandler.AddInfo("ai", "configured")
	} else {
		healthHandler.AddInfo("ai", "not_configured")
	}
	app.Get("/api/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/api")

	scrapeHandler := scrape.NewHandler(d.Scrape, d.Jobs)
	api.Get("/", scrapeHandler.HandleRoot)
	api.Post("/scrape", scrapeHandler.HandleSubmit)
	api.Get("/results", scrapeHandler.HandleListResults)
	api.Get("/results/:id", scrapeHandler.HandleGetResult)
	api.Get("/results/:id/stream", scrapeHandler.HandleStreamResult)

	exportHandler := export.NewHandler(d.Jobs, d.Archive)
	api.Get("/export/excel/:id", exportHandler.HandleTable)
	api.Get("/export/pdf/:id", exportHandler.HandleDocument)

	probeHandler := extract.NewHandler(d.LLM)
	api.Post("/test-gemini", probeHandler.HandleProbe)

	return healthHandler
}
