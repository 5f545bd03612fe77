// cmd/search-api/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"basobaas-search/internal/api"
	"basobaas-search/internal/cache"
	"basobaas-search/internal/catalog"
	"basobaas-search/internal/common/config"
	"basobaas-search/internal/common/database"
	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/common/observability"
	"basobaas-search/internal/engine"
	"basobaas-search/internal/geoservices"
	"basobaas-search/internal/interpreter"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting search API...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Catalog: Elasticsearch when enabled, PostgreSQL otherwise ---
	var cat catalog.Catalog = catalog.NewPostgresCatalog(pg.DB, log)
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		cat = catalog.NewElasticCatalog(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init Redis with retry (optional, cache only) ---
	var redisClient *database.RedisClient
	if cfg.Cache.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, result cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			zapLog.Info("Redis connected successfully")
		}
	}
	resultCache := cache.NewResultCache(redisClient, cfg.Cache.TTLSeconds, cfg.Cache.Enabled, log)

	// --- External collaborators ---
	var completer interpreter.Completer
	if genai := interpreter.NewGenAIClient(cfg.APIs); genai != nil {
		completer = genai
		zapLog.Info("language model client configured")
	} else {
		zapLog.Info("no language model credential, rule-based parser only")
	}

	resolver := geoservices.NewResolver(
		geoservices.NewHTTPGeocoder(cfg.APIs),
		geoservices.NewHTTPIPLocator(cfg.APIs),
		log,
	)

	// --- Engine ---
	interp := interpreter.New(completer, interpreter.DefaultVocabulary(), log)
	searcher := engine.NewSearcher(cat, log)
	recommender := engine.NewRecommender(cat, engine.NewScorer(engine.DefaultWeights()), log)

	handler := api.NewHandler(searcher, recommender, interp, resolver, resultCache, cfg.Search, log)
	router := api.NewRouter(cfg.Server, cfg.App, handler, log, obs)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
