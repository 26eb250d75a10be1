// Package main provides the report bot server entry point.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/repotomo/repotomo-linebot-go/internal/api"
	"github.com/repotomo/repotomo-linebot-go/internal/bot"
	"github.com/repotomo/repotomo-linebot-go/internal/buildinfo"
	"github.com/repotomo/repotomo-linebot-go/internal/config"
	"github.com/repotomo/repotomo-linebot-go/internal/logger"
	"github.com/repotomo/repotomo-linebot-go/internal/messages"
	"github.com/repotomo/repotomo-linebot-go/internal/metrics"
	"github.com/repotomo/repotomo-linebot-go/internal/reply"
	"github.com/repotomo/repotomo-linebot-go/internal/report"
	"github.com/repotomo/repotomo-linebot-go/internal/sentry"
	"github.com/repotomo/repotomo-linebot-go/internal/storage"
	"github.com/repotomo/repotomo-linebot-go/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting RepoTomo LINE bot server")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	} else if sentry.IsEnabled() {
		defer sentry.Flush(2 * time.Second)
		log.Info("Sentry initialized")
	}

	// Open the storage backend
	var repo storage.Repository
	switch cfg.DataBackend {
	case config.BackendMemory:
		repo = storage.NewMemoryWithFixtures()
		log.Warn("Using in-memory storage, data is lost on restart")
	default:
		db, err := storage.New(context.Background(), cfg.SQLitePath())
		if err != nil {
			log.WithError(err).Fatal("Failed to open database")
		}
		defer func() { _ = db.Close() }()
		log.WithField("path", cfg.SQLitePath()).Info("Database connected")
		repo = db
	}

	// Create Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	if db, ok := repo.(*storage.DB); ok {
		db.SetMetrics(m)
	}
	log.Info("Metrics initialized")

	// Create LINE Messaging API client
	client, err := messaging_api.NewMessagingApiAPI(cfg.LineChannelToken)
	if err != nil {
		log.WithError(err).Fatal("Failed to create messaging API client")
	}

	picker := messages.NewPicker(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	processor := bot.NewProcessor(bot.ProcessorConfig{
		Repository:          repo,
		Resolver:            report.NewResolver(repo),
		Composer:            reply.NewComposer(picker, cfg.Bot.HistoryLimit),
		Profiles:            bot.NewLineProfileProvider(client),
		Logger:              log,
		Metrics:             m,
		MaxPostbackDataSize: cfg.Bot.MaxPostbackDataSize,
		HistoryLimit:        cfg.Bot.HistoryLimit,
	})

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		Client:        client,
		BotConfig:     &cfg.Bot,
		Metrics:       m,
		Logger:        log,
		Processor:     processor,
	})
	log.Info("Webhook handler created")

	apiServer := api.NewServer(api.ServerConfig{
		Repository: repo,
		Picker:     picker,
		Logger:     log,
		Metrics:    m,
	})

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))

	setupRoutes(router, webhookHandler, apiServer, repo, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Drain in-flight webhook events before stopping the HTTP server so
	// accepted deliveries still get their replies.
	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timed out waiting for in-flight events")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
