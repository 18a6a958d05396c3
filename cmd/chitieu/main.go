package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"chitieu/internal/amqp"
	"chitieu/internal/cache"
	"chitieu/internal/chat"
	"chitieu/internal/cli"
	"chitieu/internal/config"
	"chitieu/internal/dedupe"
	"chitieu/internal/extract"
	apphttp "chitieu/internal/http"
	applog "chitieu/internal/log"
	"chitieu/internal/middleware/ratelimit"
	"chitieu/internal/report"
	"chitieu/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(config.RoleServer)
	logger.Info("Starting chitieu server", applog.FieldOperation, applog.OpStartup)

	repo := cli.OpenRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Event publishing is optional; without AMQP the sheets mirror is simply off.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.PublishEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without event publishing", applog.FieldError, err)
		} else {
			amqpClient = client
			publisher = client
			defer amqpClient.Close()
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	extractor, err := extract.NewGeminiExtractor(context.Background(), extract.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.ExtractTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("Failed to initialize extractor", applog.FieldError, err)
		os.Exit(1)
	}

	sessions := cache.NewLRUCache[chat.Session](cfg.SessionMaxEntries, cfg.SessionTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(sessions)
	cacheManager.StartCleanup(cfg.SessionCleanupInterval)

	saver := services.NewTransactionService(repo, publisher, logger)
	machine := chat.NewMachine(
		sessions,
		extractor,
		dedupe.NewDetector(repo, logger),
		saver,
		chat.WithLogger(logger),
	)

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		Logger:            logger,
	})

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Chat:       machine,
		Reports:    report.NewService(repo, logger),
		DB:         repo,
		Limiter:    limiter,
		Logger:     logger,
		UserID:     cfg.DemoUserID,
		SessionTTL: sessions.TTL(),
	})
	srv.ReadTimeout = 10 * time.Second
	// Extraction can take most of ExtractTimeout on its own.
	srv.WriteTimeout = cfg.ExtractTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
	})

	logger.Info("Listening", "port", cfg.Port, "user_id", cfg.DemoUserID)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
