package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rcf-tools/podiumbot/app/api"
	"github.com/rcf-tools/podiumbot/app/cfg"
	"github.com/rcf-tools/podiumbot/app/database"
	"github.com/rcf-tools/podiumbot/app/discord"
	"github.com/rcf-tools/podiumbot/app/results"
	"github.com/rcf-tools/podiumbot/app/store"
	"github.com/rcf-tools/podiumbot/app/tasks"
	"github.com/rcf-tools/podiumbot/app/zwiftpower"
)

func main() {
	// Local development convenience; in production everything comes from the
	// real environment.
	_ = godotenv.Load()

	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting podiumbot", "version", appConfig.Version, "team_id", appConfig.TeamID,
		"timezone", appConfig.Timezone, "once", appConfig.Once)

	pipeline, err := buildPipeline(appConfig)
	if err != nil {
		slog.Error("Failed to build pipeline", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(filepath.Join(appConfig.DataDir, "podiumbot.db"))
	if err != nil {
		slog.Error("Failed to open run archive", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Debug("Run archive ready", "migration_version", version, "dirty", dirty)

	runRepo := database.NewRunRepository(db)

	if appConfig.Once {
		runOnce(pipeline, runRepo)
		return
	}

	scheduler := tasks.NewScheduler(pipeline, runRepo,
		time.Duration(appConfig.SchedulerInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(runRepo, scheduler, appConfig.Version)
	server := api.NewServer(handler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer; it drains the in-flight run first.
	slog.Info("Shutdown complete")
}

// buildPipeline wires the core from configuration: source client, extractor,
// classifier over its persistent cache, ledger, and the Discord notifier.
func buildPipeline(appConfig *cfg.Cfg) (*results.Pipeline, error) {
	timeout := time.Duration(appConfig.Timeout) * time.Second

	client := zwiftpower.NewClient(zwiftpower.ClientOptions{
		BaseURL:   appConfig.BaseURL,
		TeamID:    appConfig.TeamID,
		Cookie:    appConfig.Cookie,
		UserAgent: appConfig.UserAgent,
		Timeout:   timeout,
	})

	extractor, err := results.NewExtractor(client.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to build extractor: %w", err)
	}

	rules, err := results.LoadRules(appConfig.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load classification rules: %w", err)
	}

	if err := os.MkdirAll(appConfig.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	ledger := store.OpenLedger(filepath.Join(appConfig.DataDir, "seen.json"))
	cache := store.OpenClassificationCache(filepath.Join(appConfig.DataDir, "categories.json"))
	slog.Debug("Stores loaded", "ledger_entries", ledger.Len(), "cached_classifications", cache.Len())

	classifier := results.NewClassifier(client, cache, rules)
	notifier := discord.NewWebhook(appConfig.WebhookURL, timeout)

	return results.NewPipeline(client, extractor, classifier, ledger, appConfig.IgnoreFile,
		cache, notifier, results.PipelineOptions{
			Location:   appConfig.Location,
			WindowDays: appConfig.WindowDays,
			MaxRank:    appConfig.MaxRank,
			ForcePost:  appConfig.ForcePost,
		}), nil
}

// runOnce executes a single pipeline pass synchronously (cron mode).
func runOnce(pipeline *results.Pipeline, runRepo database.RunRepository) {
	task := tasks.NewReportTask(pipeline, runRepo)
	task.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := task.Execute(ctx); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}
