package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fixture-matching/internal/cache"
	"fixture-matching/internal/classifier"
	"fixture-matching/internal/config"
	"fixture-matching/internal/database"
	"fixture-matching/internal/handlers"
	"fixture-matching/internal/parser"
	"fixture-matching/internal/server"
	"fixture-matching/internal/workers"
)

func main() {
	// Load configuration. FIXTURE_MATCHER_CONFIG selects a config file,
	// otherwise environment variables and .env apply.
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	// Initialize database
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Database initialized at %s", cfg.DBPath)

	// Match run cache
	cacheManager := cache.NewManager(db.MatchRunCache, cfg.DisableCache, cfg.CacheTTL)
	defer cacheManager.Close()

	// Train the classifier on the built-in corpus plus any reviewed emails
	model := trainClassifier(cfg, db)

	// Background match refresh
	matchUpdater := workers.NewMatchUpdater(cfg, db, cacheManager, logger)
	matchUpdater.Start()

	// Build the router
	handlerSet := server.NewHandlerSet(cfg, db, cacheManager, model,
		parser.NewNoOpFallbackExtractor(), matchUpdater, logger)
	router := server.NewRouter(handlerSet)

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: router,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle server startup and graceful shutdown
	shutdownTimeout := 30 * time.Second
	if err := server.HandleSignals(srv, shutdownTimeout, matchUpdater.Stop); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// loadConfig picks the configuration source for the server
func loadConfig() (*config.Config, error) {
	if file := os.Getenv("FIXTURE_MATCHER_CONFIG"); file != "" {
		return config.LoadServerConfigWithFile(file)
	}
	return config.Load()
}

// trainClassifier builds the startup classifier model. With retraining
// disabled the model still trains on the built-in corpus so the parse
// endpoint works out of the box.
func trainClassifier(cfg *config.Config, db *database.DB) *classifier.Ref {
	corpus := classifier.DefaultCorpus()

	if cfg.RetrainOnStartup {
		full, err := handlers.TrainingCorpus(db)
		if err != nil {
			log.Printf("WARN: Failed to load labeled emails for training, using built-in corpus: %v", err)
		} else {
			corpus = full
		}
	}

	model, err := classifier.Train(corpus)
	if err != nil {
		log.Fatalf("Failed to train classifier: %v", err)
	}

	log.Printf("Classifier trained on %d examples (%d terms)", len(corpus), model.VocabularySize())
	return classifier.NewRef(model)
}

func slogLevel(level string) slog.Level {
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
