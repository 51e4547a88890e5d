package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miradorstack/aura/internal/api"
	"github.com/miradorstack/aura/internal/audit"
	"github.com/miradorstack/aura/internal/cache"
	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/config"
	"github.com/miradorstack/aura/internal/events"
	"github.com/miradorstack/aura/internal/metrics"
	"github.com/miradorstack/aura/internal/notifications"
	"github.com/miradorstack/aura/internal/services"
	"github.com/miradorstack/aura/internal/session"
	"github.com/miradorstack/aura/internal/tools"
	"github.com/miradorstack/aura/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting aura-engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initial, err := catalog.Load(cfg.Catalog.Packs, logger)
	if err != nil {
		logger.Error("failed to load scenario packs", slog.Any("error", err))
		os.Exit(1)
	}
	holder := catalog.NewHolder(initial, cfg.Catalog.Packs, logger)
	logger.Info("scenario catalog loaded", slog.Int("scenarios", initial.Len()))
	if cfg.Catalog.Watch {
		go func() {
			if err := holder.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scenario pack watch stopped", slog.Any("error", err))
			}
		}()
	}

	var store cache.Provider = cache.NewMemoryProvider()
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("valkey session store unavailable, keeping sessions in memory", slog.Any("error", err))
		} else {
			store = provider
		}
	}
	defer store.Close()

	sessionOpts := []session.Option{session.WithTTL(cfg.Session.TTL), session.WithLogger(logger)}

	if cfg.Audit.Enabled {
		auditLog, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			logger.Error("failed to open audit log", slog.String("path", cfg.Audit.Path), slog.Any("error", err))
			os.Exit(1)
		}
		defer auditLog.Close()
		sessionOpts = append(sessionOpts, session.WithAudit(auditLog))
	}

	if cfg.Events.Enabled {
		publisher, err := events.Connect(cfg.Events.URL, cfg.Events.SubjectPrefix, cfg.Events.Timeout)
		if err != nil {
			logger.Warn("nats unavailable, transition events disabled", slog.Any("error", err))
		} else {
			defer publisher.Close()
			sessionOpts = append(sessionOpts, session.WithEvents(publisher))
		}
	}

	if cfg.Escalation.Enabled {
		notifier := notifications.NewSlackNotifier(cfg.Escalation.WebhookURL, "", cfg.Escalation.Timeout)
		sessionOpts = append(sessionOpts, session.WithEscalator(notifier))
	}

	sessions := session.NewManager(holder, store, sessionOpts...)

	facade := tools.NewFacade(holder, tools.WithProject(cfg.Catalog.Project))
	executor := tools.NewRecordingExecutor(tools.NewExecutor(facade), logger, nil)

	service := services.NewRemediationService(logger, executor, sessions)
	server, err := api.NewServer(cfg.Server, service)
	if err != nil {
		logger.Error("failed to create gRPC server", slog.Any("error", err))
		os.Exit(1)
	}

	var httpServer *http.Server
	if cfg.HTTP.Enabled && cfg.HTTP.Address != "" {
		gin.SetMode(gin.ReleaseMode)
		gateway := api.NewGateway(holder, executor, sessions, promhttp.Handler())
		httpServer = &http.Server{
			Addr:         cfg.HTTP.Address,
			Handler:      gateway.NewRouter(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("http gateway listening", slog.String("address", cfg.HTTP.Address))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http gateway exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("gRPC server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("http gateway shutdown", slog.Any("error", err))
		}
	}

	logger.Info("aura-engine stopped", slog.Duration("tool_p95", service.LatencyP95()))
}
