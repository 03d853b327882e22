package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/moodflix/server/internal/agent"
	"github.com/moodflix/server/internal/api"
	"github.com/moodflix/server/internal/config"
	"github.com/moodflix/server/internal/db"
	"github.com/moodflix/server/internal/llm"
	"github.com/moodflix/server/internal/tmdb"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Log.Level)
	defer logger.Sync()

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.Database.Path))
	}
	defer database.Close()

	if purged, err := database.PurgeExpiredCache(tmdb.CacheTTL); err != nil {
		logger.Warn("failed to purge movie cache", zap.Error(err))
	} else if purged > 0 {
		logger.Info("purged stale movie cache entries", zap.Int64("count", purged))
	}

	if cfg.TMDB.APIKey == "" {
		logger.Warn("tmdb api key is not set, movie searches will fail")
	}

	// Provider and composer clients are constructed once and shared.
	tmdbClient := tmdb.NewClient(cfg.TMDB.BaseURL, cfg.TMDB.ImageBase, cfg.TMDB.APIKey)
	movieService := tmdb.NewService(tmdbClient, database, logger)

	composer, err := llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM service", zap.Error(err))
	}

	registry := agent.NewRegistry(movieService, logger)
	movieAgent := agent.New(registry, composer, database, logger)

	handler := api.NewHandler(movieAgent, movieService, composer, logger)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", zap.String("addr", cfg.Server.Addr))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}
