package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	contractsmq "checklist-service/contracts/mq"
	"checklist-service/internal/config"
	"checklist-service/internal/handler"
	"checklist-service/internal/httpserver"
	"checklist-service/internal/mqhandler"
	"checklist-service/internal/repository"
	"checklist-service/internal/service/checklist"
	"checklist-service/internal/service/taskflow"
	"checklist-service/pkg/db"
	"checklist-service/pkg/logger"
	"checklist-service/pkg/mq"
	"checklist-service/pkg/outbox"
	"checklist-service/pkg/rbac"
	pkgredis "checklist-service/pkg/redis"
	"checklist-service/pkg/util"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg := config.Load(log)

	log.Info("Starting checklist-service...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("server_port", cfg.Server.Port),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	// Redis (once-guards)
	rdb := pkgredis.NewRedisClient(cfg.Redis)
	guard := util.NewDeduperWithLogger(rdb, 10*time.Minute, log)

	// MQ publisher
	log.Info("Initializing MQ publisher...")
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	checklistRepo := repository.NewChecklistRepository(dbConn, outboxRepo, log)
	conflictRepo := repository.NewConflictRepository(dbConn, outboxRepo, log)
	taskRepo := repository.NewTaskRepository(dbConn, outboxRepo, log)
	taskConfigRepo := repository.NewTaskConfigRepository(dbConn, log)
	memberRepo := repository.NewMemberRepository(dbConn, log)

	// Domain services
	gate := rbac.NewGateWithCapabilities(cfg.Roles)
	initializer := checklist.NewInitializer(checklistRepo, guard, log)
	taskEngine := taskflow.NewEngine(taskRepo, taskConfigRepo, log)

	// Outbox dispatcher
	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(dispatcherCtx)
	replayService := outbox.NewReplayService(outboxRepo, publisher)

	// MQ consumers: recompute risk when the checklist or conflicts change
	riskRecompute := mqhandler.NewRiskRecomputeHandler(projectRepo, checklistRepo, conflictRepo, publisher, log)

	log.Info("Initializing MQ consumer for checklist.item.updated...",
		zap.String("queue", "checklist.item.updated.risk.q"),
		zap.String("routing_key", contractsmq.RoutingChecklistItemUpdate),
	)
	itemConsumer, err := mq.NewConsumer(cfg.MQ.URL, "checklist.item.updated.risk.q", contractsmq.RoutingChecklistItemUpdate, log)
	if err != nil {
		log.Fatal("Failed to init item consumer", zap.Error(err))
	}
	defer itemConsumer.Close()
	itemConsumer.SetHandler(riskRecompute.HandleItemUpdated)
	go func() {
		log.Info("Starting checklist.item.updated consumer...")
		if err := itemConsumer.StartConsuming(); err != nil {
			log.Fatal("Item consumer failed", zap.Error(err))
		}
	}()

	log.Info("Initializing MQ consumer for conflict.changed...",
		zap.String("queue", "conflict.changed.risk.q"),
		zap.String("routing_key", contractsmq.RoutingConflictChanged),
	)
	conflictConsumer, err := mq.NewConsumer(cfg.MQ.URL, "conflict.changed.risk.q", contractsmq.RoutingConflictChanged, log)
	if err != nil {
		log.Fatal("Failed to init conflict consumer", zap.Error(err))
	}
	defer conflictConsumer.Close()
	conflictConsumer.SetHandler(riskRecompute.HandleConflictChanged)
	go func() {
		log.Info("Starting conflict.changed consumer...")
		if err := conflictConsumer.StartConsuming(); err != nil {
			log.Fatal("Conflict consumer failed", zap.Error(err))
		}
	}()

	// HTTP server
	log.Info("Initializing HTTP server...", zap.String("port", cfg.Server.Port))
	handlers := httpserver.Handlers{
		Auth:      handler.NewAuthHandler(memberRepo, gate, cfg.JWT.Secret, log),
		Catalog:   handler.NewCatalogHandler(),
		Project:   handler.NewProjectHandler(projectRepo, initializer, gate, log),
		Checklist: handler.NewChecklistHandler(checklistRepo, gate, log),
		Conflict:  handler.NewConflictHandler(conflictRepo, gate, log),
		Risk:      handler.NewRiskHandler(projectRepo, checklistRepo, conflictRepo, log),
		Task:      handler.NewTaskHandler(taskEngine, log),
		Admin:     handler.NewAdminHandler(replayService, log),
	}
	router := httpserver.NewRouter(handlers, memberRepo, cfg.JWT.Secret, log, dbConn, publisher)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("checklist-service is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
		zap.String("mq_exchange", mq.ExchangeName),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down checklist-service gracefully...")

	log.Info("Stopping MQ consumers...")
	itemConsumer.Stop()
	conflictConsumer.Stop()

	log.Info("Stopping outbox dispatcher...")
	dispatcherCancel()

	log.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("Closing database connection...")
	dbConn.Close()

	log.Info("checklist-service shutdown complete")
}
