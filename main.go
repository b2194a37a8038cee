package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"energymon/internal/config"
	"energymon/internal/db"
	"energymon/internal/engine"
	"energymon/internal/ingest"
	"energymon/internal/logger"
	"energymon/internal/mqtt"
	"energymon/internal/redis"
	"energymon/internal/scheduler"
	"energymon/internal/taskqueue"
	"energymon/internal/web"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()

	dbConn, err := db.NewDB(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbConn.Close()

	if err := dbConn.InitSchema(ctx); err != nil {
		logger.Fatal("failed to initialize schema", zap.Error(err))
	}

	redisClient := redis.NewRedisClient(cfg.RedisAddr)
	locker := redis.NewCooldownLocker(redisClient)

	eng := engine.NewEngine(dbConn, locker)

	taskqueue.SetGlobalInstances(eng)
	go taskqueue.StartWorkers(cfg.RedisAddr)

	sched := scheduler.NewScheduler(dbConn)
	if err := sched.Start(cfg.EvalCron); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	// MQTT ingestion is optional; HTTP ingestion always works
	var sub *ingest.Subscriber
	if cfg.MQTTBroker != "" {
		mqttClient, err := mqtt.NewClient(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			logger.Fatal("failed to connect to MQTT broker", zap.Error(err))
		}
		sub = ingest.NewSubscriber(mqttClient, dbConn)
		if err := sub.Start(); err != nil {
			logger.Fatal("failed to subscribe to readings topic", zap.Error(err))
		}
	}

	webServer := web.NewWebServer(dbConn, cfg.JWTSecret, eng)
	go func() {
		if err := webServer.Start(cfg.HTTPAddr); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.HTTPAddr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	if sub != nil {
		sub.Stop()
	}
	sched.Stop()
	taskqueue.StopWorkers()
	logger.Info("shutdown complete")
}
