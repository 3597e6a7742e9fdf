package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/resume-screener/internal/analyzer"
	"github.com/fadilmartias/resume-screener/internal/config"
	"github.com/fadilmartias/resume-screener/internal/domain/fiber/handler"
	"github.com/fadilmartias/resume-screener/internal/middleware"
	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/fadilmartias/resume-screener/internal/repository"
	"github.com/fadilmartias/resume-screener/internal/service"
	"github.com/fadilmartias/resume-screener/internal/usecase"
	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	screeningConfig := config.LoadScreeningConfig()

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: int(screeningConfig.MaxUploadBytes)*20 + 1024*1024,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: appConfig.CORSOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	llmConfig := config.LoadLLMConfig()
	completer, err := service.NewCompletionService(ctx, llmConfig)
	if err != nil {
		log.Fatalf("Could not create completion service: %v", err)
	}
	extractor := util.TextExtractor{OCRFallback: screeningConfig.OCRFallback}
	pipelineConfig := analyzer.ConfigFromLLM(llmConfig)
	pipelineConfig.Extract = extractor.PDF
	pipeline := analyzer.NewPipeline(completer, pipelineConfig)

	var embedder service.EmbeddingServiceInterface
	if config.LoadGeminiConfig().APIKey != "" {
		gemini, err := service.NewGeminiService(ctx, llmConfig)
		if err != nil {
			log.Fatalf("Could not create gemini service: %v", err)
		}
		embedder = gemini
	} else {
		log.Println("GEMINI_API_KEY not set, job embeddings disabled")
	}

	files, err := service.NewFileStore(ctx, config.LoadStorageConfig(), screeningConfig.UploadDir)
	if err != nil {
		log.Fatalf("Could not create file store: %v", err)
	}

	var events service.EventPublisherInterface = service.NopPublisher{}
	if brokerConfig := config.LoadBrokerConfig(); brokerConfig.URL != "" {
		publisher, err := service.NewAMQPPublisher(brokerConfig.URL, brokerConfig.Exchange)
		if err != nil {
			log.Fatalf("Could not connect to broker: %v", err)
		}
		events = publisher
	}
	defer events.Close()

	jobRepo := repository.NewJobRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	screeningRepo := repository.NewScreeningRepository(db)

	screeningUC := usecase.NewScreeningUsecase(usecase.ScreeningDeps{
		Jobs:        jobRepo,
		Candidates:  candidateRepo,
		Screenings:  screeningRepo,
		Analyzer:    pipeline,
		Embedder:    embedder,
		Files:       files,
		Events:      events,
		Extractor:   extractor,
		Concurrency: screeningConfig.Concurrency,
	})
	jobUC := usecase.NewJobUsecase(jobRepo, screeningRepo)

	handler.NewJobHandler(jobUC).RegisterRoutes(app)
	handler.NewScreeningHandler(screeningUC, screeningConfig.MaxUploadBytes).RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(100)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	for _, ext := range []string{"uuid-ossp", "vector"} {
		if err := db.Exec(fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s"`, ext)).Error; err != nil {
			log.Fatalf("Could not enable extension %s: %v", ext, err)
		}
	}
	if err := db.AutoMigrate(&model.Job{}, &model.Candidate{}, &model.Screening{}); err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
