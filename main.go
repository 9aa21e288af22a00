package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"lg/coach-energy-api/logger"
	"lg/coach-energy-api/nutrition"
	"lg/coach-energy-api/oracle"
)

const defaultOracleCacheTTL = 24 * time.Hour

func main() {
	// .env is optional for the server; deployed environments set variables directly.
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pool := getDBPool(log)
	defer pool.Close()

	st := newPGStore(pool, log)
	est := newOracle(log)

	h := newHandler(st,
		nutrition.NewBMREstimator(est, log),
		nutrition.NewActivityEstimator(st, est, log),
		nutrition.NewSessionEstimator(est, log),
		log)

	if strings.EqualFold(os.Getenv("LOG_MODE"), "prod") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Info("starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

// getDBPool creates a connection pool. A pool (not a single conn) survives
// the provider closing idle connections.
func getDBPool(log *logger.Logger) *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(os.Getenv("DB_URL"))
	if err != nil {
		log.Fatal("unable to parse DB_URL", "error", err)
	}
	// Simple protocol avoids "cached plan must not change result type" after
	// schema changes behind a pooler.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal("unable to connect to database", "error", err)
	}
	log.Info("DB pool ready")
	return pool
}

// newOracle builds the estimation client, wrapped in a Redis response cache
// when REDIS_ADDR is set and reachable. Returns nil when the oracle is not
// configured; every estimator then uses its deterministic fallback.
func newOracle(log *logger.Logger) oracle.Oracle {
	cfg := oracle.LoadConfig()
	if !cfg.Usable() {
		log.Warn("oracle not configured, using deterministic fallbacks only")
		return nil
	}
	client := oracle.NewOpenAIClient(cfg, oracle.NewLogObserver(log))

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return client
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, oracle responses will not be cached", "addr", addr, "error", err)
		_ = rdb.Close()
		return client
	}

	ttl := defaultOracleCacheTTL
	if v := os.Getenv("ORACLE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	log.Info("oracle response cache enabled", "addr", addr, "ttl", ttl.String())
	return oracle.NewCachedOracle(client, rdb, ttl, log)
}
