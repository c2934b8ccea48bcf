package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/lmittmann/tint"

	"github.com/mixelka/slackmail/internal/config"
	"github.com/mixelka/slackmail/internal/database"
	"github.com/mixelka/slackmail/internal/delivery"
	"github.com/mixelka/slackmail/internal/formatter"
	"github.com/mixelka/slackmail/internal/inbound"
	"github.com/mixelka/slackmail/internal/mailparse"
	"github.com/mixelka/slackmail/internal/secrets"
	"github.com/mixelka/slackmail/internal/sender"
	"github.com/mixelka/slackmail/internal/slackbot"
	"github.com/mixelka/slackmail/internal/storage"
	"github.com/mixelka/slackmail/internal/store"
	"github.com/mixelka/slackmail/internal/tenant"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting slack-email bridge")

	// Connect to database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	// Drafts that never got a button click are worthless after a week.
	if purged, err := db.PurgeDraftsBefore(ctx, time.Now().Add(-7*24*time.Hour)); err != nil {
		logger.Warn("failed to purge stale drafts", "error", err)
	} else if purged > 0 {
		logger.Info("purged stale drafts", "count", purged)
	}

	// AWS clients
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	configStore := store.New(awsCfg, cfg.ConfigTable)
	resolver := tenant.NewResolver(configStore)

	// Slack client, with the token pulled from Secrets Manager if it is
	// not in the environment.
	botToken := cfg.SlackBotToken
	if botToken == "" {
		botToken, err = secrets.NewResolver(awsCfg).BotToken(ctx, cfg.SlackBotTokenSecretArn)
		if err != nil {
			logger.Error("failed to resolve bot token", "error", err)
			os.Exit(1)
		}
	}
	slackClient := slackbot.NewClient(botToken, logger)

	// Create components
	slackFormatter := formatter.NewSlackFormatter()
	coordinator := delivery.NewCoordinator(slackClient, slackFormatter, delivery.Config{
		MaxRetries:     cfg.DeliveryMaxRetries,
		InitialBackoff: cfg.DeliveryInitialBackoff,
	}, db, logger)

	mailer := sender.NewSESMailer(awsCfg, logger)
	pipeline := sender.NewPipeline(resolver, mailer, configStore, logger)

	handlers := slackbot.NewHandlers(slackClient, db, db, pipeline, resolver, configStore, configStore, logger)
	server := slackbot.NewServer(cfg.HTTPAddr, cfg.SlackSigningSecret, handlers, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down HTTP server", "error", err)
		}
		cancel()
	}()

	// Inbound consumer (optional)
	if cfg.InboundQueueURL != "" {
		fetcher := storage.NewS3Fetcher(awsCfg, cfg.RawMailBucket)
		processor := inbound.NewProcessor(fetcher, mailparse.NewParser(), configStore, coordinator, logger)
		consumer := inbound.NewConsumer(awsCfg, cfg.InboundQueueURL, processor, logger)

		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("inbound consumer stopped", "error", err)
			}
		}()
	}

	logger.Info("bridge is running, press Ctrl+C to stop")
	if err := server.Start(); err != nil {
		logger.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("bridge stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
			NoColor:    false,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
