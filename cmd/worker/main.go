package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/robfig/cron"
	"golang.org/x/time/rate"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/api/handlers"
	job "github.com/maheshrc27/autopost/internal/jobs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/queue"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	ledgerRepo := repository.NewPostRecordRepository(db)
	workerRepo := repository.NewWorkerRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)

	workerName := cfg.WorkerName
	if workerName == "" {
		suffix, err := gonanoid.New(8)
		if err != nil {
			log.Fatalf("Failed to generate worker name: %v", err)
		}
		workerName = fmt.Sprintf("%s-%s", cfg.Platform, suffix)
	}

	worker := &models.Worker{
		Name:     workerName,
		Platform: cfg.Platform,
		Status:   models.WorkerStatusIdle,
	}
	if err := workerRepo.Upsert(ctx, worker); err != nil {
		log.Fatalf("Failed to register worker: %v", err)
	}

	var asynqClient *asynq.Client
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		asynqClient = asynq.NewClient(redisConn)
		defer asynqClient.Close()

		queueW := queue.NewQueue(productRepo, queue.NoopEnricher{})

		go func() {
			server := asynq.NewServer(redisConn, asynq.Config{
				Concurrency: 10,
			})

			mux := asynq.NewServeMux()
			mux.HandleFunc(queue.TaskTypeEnrichProduct, queueW.HandleEnrichProductTask)

			log.Println("Starting the Asynq server...")
			if err := server.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	rnd := utils.NewRand(0)

	quotaTracker := service.NewQuotaService(quotaRepo, cfg.Platform, cfg.DailyLimit)
	selector := service.NewSelectorService(productRepo, ledgerRepo, workerName, cfg.ClaimTTL, rnd)
	contentService := service.NewContentService(fallbackOnlyGenerator{})
	imageAcquirer := service.NewLocalImageAcquirer(cfg.ImageDir)
	poster := service.NewDryRunPoster()

	orchestrator := service.NewOrchestrator(
		selector, quotaTracker, contentService, imageAcquirer, poster,
		ledgerRepo, productRepo, workerRepo,
		service.OrchestratorOptions{
			WorkerName:  workerName,
			Platform:    cfg.Platform,
			Backoff:     cfg.BackoffInterval,
			SleepMin:    cfg.PostIntervalMin,
			SleepMax:    cfg.PostIntervalMax,
			AsynqClient: asynqClient,
			Limiter:     rate.NewLimiter(rate.Every(cfg.PostIntervalMin/2), 1),
			Rand:        rnd,
		})

	heartbeatJob := job.NewHeartbeatJob(workerRepo, productRepo, workerName, cfg.StaleAfter)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", heartbeatJob.Beat)
	c.AddFunc("@every 00h10m00s", heartbeatJob.ReapStaleClaims)
	c.Start()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(logger.New())

	status := handlers.NewStatusHandler(workerRepo, ledgerRepo, quotaTracker, cfg.Platform)
	app.Get("/health", status.Health)
	api := app.Group("/api")
	api.Get("/workers", status.ListWorkers)
	api.Get("/ledger/summary", status.LedgerSummary)
	api.Get("/ledger/recent", status.RecentRecords)
	api.Get("/quota", status.QuotaStatus)

	go func() {
		if err := app.Listen(":" + cfg.StatusPort); err != nil {
			log.Fatalf("Failed to start status server: %v", err)
		}
	}()
	log.Printf("Worker %s posting to %s, status on :%s", workerName, cfg.Platform, cfg.StatusPort)

	go orchestrator.Run(ctx)

	gracefulShutdown(app, db, cancel)
}

// fallbackOnlyGenerator is wired until a real AI backend is configured;
// every cycle then posts the deterministic template.
type fallbackOnlyGenerator struct{}

func (fallbackOnlyGenerator) Generate(ctx context.Context, product *models.Product, platform string) (*service.Content, error) {
	return service.FallbackContent(product), nil
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, cancel context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down worker...")
	cancel()

	// Give the in-flight cycle a moment to reach its boundary.
	time.Sleep(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down status server: %v", err)
	}

	closeDB(db)
	log.Println("Worker shutdown complete.")
}
