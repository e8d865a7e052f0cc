// Package bootstrap assembles the application dependency graph.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/analyses"
	"archive-backend/internal/dispatch"
	"archive-backend/internal/history"
	"archive-backend/internal/llm"
	"archive-backend/internal/llm/mistral"
	"archive-backend/internal/pipeline"
	"archive-backend/internal/queue"
	"archive-backend/internal/shared/config"
	"archive-backend/internal/shared/server"
	"archive-backend/internal/shared/storage/db"
	"archive-backend/internal/shared/telemetry"
	"archive-backend/internal/webhook"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	LLM        llm.Client
	Analyzer   *pipeline.Analyzer
	Queue      *queue.Gateway
	Dispatcher *dispatch.Dispatcher
	History    history.Store

	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	WebhookHandler  *webhook.Handler
	HistoryHandler  *history.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	var gateway *queue.Gateway
	if strings.TrimSpace(cfg.StoreURL) != "" {
		gateway = queue.NewGateway(cfg.StoreURL, cfg.StoreServiceKey)
	} else {
		telemetry.Warn("bootstrap.store_not_configured", map[string]any{
			"detail": "STORE_URL empty; async analysis and webhook processing disabled",
		})
	}

	var store history.Store
	if sqlDB != nil {
		store = history.NewPGStore(sqlDB)
	} else {
		store = history.NewMemoryStore()
	}

	_, apiAvailable := llmClient.(*mistral.Client)
	analyzer := pipeline.New(llmClient, cfg.MistralModel)
	dispatcher := dispatch.New(cfg.DispatchMaxConcurrent)

	svc := &analyses.Service{
		Analyzer:   analyzer,
		Queue:      gateway,
		Dispatcher: dispatcher,
		History:    store,
	}

	analysisHandler := analyses.NewHandler(svc)
	analysisHandler.APIAvailable = apiAvailable

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		LLM:             llmClient,
		Analyzer:        analyzer,
		Queue:           gateway,
		Dispatcher:      dispatcher,
		History:         store,
		AnalysesService: svc,
		AnalysisHandler: analysisHandler,
		WebhookHandler:  webhook.NewHandler(cfg.WebhookSecret, cfg.MinContentLength, svc, gateway),
		HistoryHandler:  history.NewHandler(store),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
		WebhookHandler:  app.WebhookHandler,
		HistoryHandler:  app.HistoryHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_history", map[string]any{
				"detail": "DATABASE_URL empty; using in-memory run history",
			})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_unavailable", map[string]any{
				"error":  err.Error(),
				"detail": "using in-memory run history",
			})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.MistralAPIKey) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.placeholder_llm", map[string]any{
				"detail": "MISTRAL_API_KEY empty; analysis calls will fail over to keyword fallback",
			})
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("MISTRAL_API_KEY is required")
	}
	return mistral.NewClient(cfg.MistralAPIKey, cfg.MistralModel, time.Duration(cfg.MistralTimeout)*time.Second)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
