package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"emlak-scraper/internal/config"
	"emlak-scraper/internal/core/acquire"
	"emlak-scraper/internal/core/extract"
	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/core/locate"
	"emlak-scraper/internal/core/scrape"
	"emlak-scraper/internal/logger"
	"emlak-scraper/internal/platform/eino"
	"emlak-scraper/internal/platform/postgres"
	rds "emlak-scraper/internal/platform/redis"
	"emlak-scraper/internal/platform/storage"
	tasks "emlak-scraper/internal/platform/tasks"
	"emlak-scraper/internal/server"
	"emlak-scraper/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[emlak-scraper] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")
	ctx := context.Background()

	// Redis backs the task queue regardless of the job store backend.
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	var store job.Store
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pg.Close()
		if store, err = job.NewPostgresStore(ctx, pg.Pool()); err != nil {
			log.Fatalf("postgres store: %v", err)
		}
	case "memory":
		store = job.NewMemoryStore()
	default:
		store = job.NewRedisStore(redisSvc)
	}
	jobSvc := job.NewJobService(store)
	logr.LogInfof("job store: %s", cfg.StoreBackend)

	acq, err := acquire.New(cfg.AcquirerBackend, acquire.Options{
		NavTimeout:  cfg.NavTimeout,
		SettleDelay: cfg.SettleDelay,
		Profile:     acquire.ProfileByName(cfg.HeaderProfile),
	})
	if err != nil {
		log.Fatal(err)
	}

	einoSvc, err := eino.NewService(ctx, eino.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.DefaultLLMModel,
		Timeout:  cfg.AITimeout,
	})
	if err != nil {
		log.Fatalf("failed to initialize Eino service: %v", err)
	}
	if cfg.AIEnabled() {
		logr.LogInfof("AI extraction via %s (%s)", cfg.LLMProvider, einoSvc.ModelName())
	} else {
		logr.LogWarn("GEMINI_API_KEY not set; listings will be filled with placeholders")
	}

	var archive storage.Archiver
	if cfg.ArchiveEnabled() {
		sb, err := storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket, "exports")
		if err != nil {
			logr.LogWarnf("export archiving disabled: %v", err)
		} else {
			archive = sb
		}
	}

	taskClient := tasks.New(redisSvc)
	defer taskClient.Close()

	scrapeSvc := scrape.NewService(scrape.Runtime{
		Jobs:       jobSvc,
		Acquirer:   acq,
		Locator:    locate.New(locate.Options{}),
		Extractor:  extract.New(einoSvc),
		Tasks:      taskClient,
		MaxRetries: cfg.TaskMaxRetries,
		Log:        logger.New("ScrapeService"),
	})

	mux := worker.NewMux()
	mux.HandleFunc(tasks.TaskTypeScrape, scrapeSvc.HandleScrapeTask)
	asynqServer := worker.NewServer(redisSvc.AsynqRedisOpt(), cfg.WorkerConcurrency)
	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	app := fiber.New(fiber.Config{
		AppName: "Emlak Scraper",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	healthHandler := server.RegisterRoutes(app, server.Dependencies{
		Jobs:    jobSvc,
		Scrape:  scrapeSvc,
		LLM:     einoSvc,
		Archive: archive,
		Redis:   redisSvc,
	})

	go func() {
		time.Sleep(5 * time.Second)
		healthHandler.SetReady()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
