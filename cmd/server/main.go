package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiKendai/codesim/internal/api"
	"github.com/RishiKendai/codesim/internal/cache"
	"github.com/RishiKendai/codesim/internal/config"
	"github.com/RishiKendai/codesim/internal/configs/env"
	"github.com/RishiKendai/codesim/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/codesim/internal/infra/redis"
	"github.com/RishiKendai/codesim/internal/logger"
	"github.com/RishiKendai/codesim/internal/metrics"
	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/RishiKendai/codesim/internal/preprocess"
	"github.com/RishiKendai/codesim/internal/repository"
	"github.com/RishiKendai/codesim/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("Starting codesim server")

	metrics.InitPrometheus()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.MetricsPort).Msg("Metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Metrics server failed")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	submissionsRepo := repository.NewSubmissionsRepository(mongoRepo)
	resultsRepo := repository.NewResultsRepository(mongoRepo)

	comparator := plagiarism.NewComparator(cfg.ComparatorOptions()...)
	preprocessSvc := preprocess.NewService(submissionsRepo, comparator)
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.NewString()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		preprocessSvc,
		retryHandler,
		cfg.StreamRetentionDuration,
	)

	workerPool := plagiarism.NewWorkerPool(ctx)
	defer workerPool.Close()

	router := api.SetupRoutes(ctx, cfg, api.Dependencies{
		Submissions: submissionsRepo,
		Reports:     resultsRepo,
		Status:      plagiarism.NewRedisStatus(redisClient),
		Cache:       cache.NewResultCache(redisClient, cfg.ResultCacheTTL),
		WorkerPool:  workerPool,
		Comparator:  comparator,
	})

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Submission consumer stopped")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Submission consumer started")

	srv := api.StartServer(router, cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}

	cancel()
	<-consumerDone

	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer metricsCancel()
	if err := metricsServer.Shutdown(metricsCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
