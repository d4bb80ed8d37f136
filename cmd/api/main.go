package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"nihith303/interview-ace/internal/auth"
	"nihith303/interview-ace/internal/config"
	"nihith303/interview-ace/internal/handlers"
	"nihith303/interview-ace/internal/interview"
	"nihith303/interview-ace/internal/ratelimit"
	"nihith303/interview-ace/internal/repositories"
	"nihith303/interview-ace/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := config.InitLogger(cfg.Server.LogLevel, cfg.Server.Env)
	log.Info("config loaded", "env", cfg.Server.Env, "llm_provider", cfg.LLM.Provider)

	// Reports
	var reportRepo repositories.ReportRepository
	if cfg.Database.Driver == "memory" {
		reportRepo = repositories.NewMemoryReportRepository()
		log.Warn("reports are kept in memory and will be lost on restart")
	} else {
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			fatal(log, "failed to initialize database", err)
		}
		reportRepo = repositories.NewReportRepository(db)
	}

	// Sessions
	var sessionStore repositories.SessionStore
	if cfg.Redis.Addr != "" {
		redisStore := repositories.NewRedisSessionStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Prefix+":session", cfg.Redis.SessionTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisStore.Ping(ctx)
		cancel()
		if err != nil {
			fatal(log, "failed to connect to redis", err)
		}
		defer redisStore.Close()
		sessionStore = redisStore
		log.Info("redis session store initialized", "addr", cfg.Redis.Addr)
	} else {
		sessionStore = repositories.NewMemorySessionStore()
		log.Warn("sessions are kept in memory, set REDIS_ADDR to share them across instances")
	}

	// Generation backend
	var generator services.Generator
	var embedder services.Embedder
	switch cfg.LLM.Provider {
	case "openai":
		generator = services.NewOpenAICompatGenerator(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		log.Info("openai-compatible generator initialized", "base_url", cfg.OpenAI.BaseURL, "model", cfg.OpenAI.Model)
	default:
		gemini, err := services.NewGeminiService(services.GeminiOptions{
			APIKey:     cfg.Gemini.APIKey,
			Model:      cfg.Gemini.Model,
			EmbedModel: cfg.Gemini.EmbedModel,
		}, log)
		if err != nil {
			fatal(log, "failed to initialize Gemini", err)
		}
		generator = gemini
		embedder = gemini
		log.Info("gemini initialized", "model", cfg.Gemini.Model)
	}

	promptSettings, err := services.LoadPromptSettings(cfg.Interview.PromptsFile)
	if err != nil {
		fatal(log, "failed to load prompts", err)
	}
	prompts := services.NewPromptBuilder(promptSettings)

	// Rubric retrieval is optional
	var rubrics services.RubricRetriever
	if cfg.Qdrant.URL != "" && embedder != nil {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err != nil {
			fatal(log, "failed to initialize Qdrant", err)
		}
		if err := qdrantService.InitCollection(context.Background()); err != nil {
			fatal(log, "failed to initialize Qdrant collection", err)
		}
		rubrics = services.NewRubricRetriever(embedder, qdrantService, prompts, cfg.Qdrant.RubricLimit)
		log.Info("qdrant rubric retrieval initialized", "collection", cfg.Qdrant.Collection)
	}

	archive, err := newArchive(cfg)
	if err != nil {
		fatal(log, "failed to initialize resume archive", err)
	}

	gateway := services.NewQuestionGateway(generator, prompts, cfg.Interview.QuestionCount, cfg.Interview.GenerationTimeout, log)
	scorer := services.NewScoringEngine(generator, prompts, rubrics, cfg.Interview.ScoringTimeout, log)

	// The worker runs jobs through the interview service, which in turn
	// dispatches to the worker.
	var interviewService services.InterviewService
	worker := services.NewWorker(services.JobRunnerFunc(func(ctx context.Context, ticket interview.Ticket) error {
		return interviewService.Run(ctx, ticket)
	}), cfg.Worker.Concurrency, cfg.Worker.QueueSize, log)

	interviewService = services.NewInterviewService(services.InterviewDeps{
		Sessions:   sessionStore,
		Reports:    reportRepo,
		Gateway:    gateway,
		Scorer:     scorer,
		Dispatcher: worker,
		Archive:    archive,
		Policy: interview.RetryPolicy{
			MaxAttempts:     cfg.Interview.RetryMaxAttempts,
			RetainQuestions: cfg.Interview.RetainQuestionsOnRetry,
		},
		Logger: log,
	})

	ctx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	worker.Start(ctx)

	// Auth
	var verifier *auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier, err = auth.NewVerifier(auth.Config{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.JWTIssuer,
			Audience: cfg.Auth.JWTAudience,
		})
		if err != nil {
			fatal(log, "failed to initialize token verifier", err)
		}
	} else if !cfg.IsDevelopment() {
		fatal(log, "JWT_SECRET is required outside development", fmt.Errorf("missing JWT_SECRET"))
	} else {
		log.Warn("no JWT_SECRET set, trusting the X-User-ID header")
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.Redis.Addr != "" && cfg.RateLimit.SessionsPerWindow > 0 {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Prefix+":ratelimit",
			cfg.RateLimit.SessionsPerWindow, cfg.RateLimit.Window)
		if err != nil {
			fatal(log, "failed to initialize rate limiter", err)
		}
		defer limiter.Close()
	}

	// Handlers
	sessionHandler := handlers.NewSessionHandler(interviewService, log)
	reportHandler := handlers.NewReportHandler(interviewService, log)

	app := fiber.New(fiber.Config{
		AppName:      "Interview Ace API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(interview.MaxResumeSize) + 1024*1024,
		Immutable:    true,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	protected := api.Group("", auth.Middleware(verifier, cfg.IsDevelopment()))
	protected.Post("/sessions", ratelimit.Middleware(limiter, auth.UserID), sessionHandler.HandleStart)
	protected.Get("/sessions/:id", sessionHandler.HandleGet)
	protected.Put("/sessions/:id/answers/:questionId", sessionHandler.HandleAnswer)
	protected.Post("/sessions/:id/finish", sessionHandler.HandleFinish)
	protected.Post("/sessions/:id/abandon", sessionHandler.HandleAbandon)
	protected.Post("/sessions/:id/retry", sessionHandler.HandleRetry)
	protected.Post("/sessions/:id/report", sessionHandler.HandlePersistReport)
	protected.Get("/reports", reportHandler.HandleList)
	protected.Get("/reports/:id", reportHandler.HandleGet)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Interview Ace API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"PUT /api/v1/sessions/:id/answers/:questionId",
				"POST /api/v1/sessions/:id/finish",
				"POST /api/v1/sessions/:id/abandon",
				"POST /api/v1/sessions/:id/retry",
				"POST /api/v1/sessions/:id/report",
				"GET /api/v1/reports",
				"GET /api/v1/reports/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", "error", err)
		}
		worker.Stop()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		fatal(log, "failed to start server", err)
	}
}

func newArchive(cfg *config.Config) (services.ResumeArchive, error) {
	switch cfg.Storage.Driver {
	case "local":
		return services.NewLocalArchive(cfg.Storage.UploadPath)
	case "minio":
		return services.NewMinioArchive(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	case "", "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	message := "Internal server error"
	if code != fiber.StatusInternalServerError {
		message = err.Error()
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
