package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/auth"
	"github.com/prezlab/prezbot/internal/config"
	"github.com/prezlab/prezbot/internal/docgen"
	"github.com/prezlab/prezbot/internal/flows"
	httpadapter "github.com/prezlab/prezbot/internal/interfaces/http"
	"github.com/prezlab/prezbot/internal/llm"
	"github.com/prezlab/prezbot/internal/router"
	"github.com/prezlab/prezbot/internal/session"
	"github.com/prezlab/prezbot/pkg/database"
	"github.com/prezlab/prezbot/pkg/utils"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Prezbot HR assistant",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	store, err := auth.NewCredentialStore(cfg.Auth.CredentialsDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize credential store", zap.Error(err))
	}
	uidCache, err := auth.NewUIDCache(db, logger)
	if err != nil {
		logger.Fatal("Failed to initialize uid cache", zap.Error(err))
	}

	sessions := session.NewManager(logger)
	authManager := auth.NewManager(cfg.Odoo.URL, cfg.Odoo.Database, store, uidCache, sessions, logger)

	generator := docgen.NewGenerator(cfg.Templates.Dir, logger)
	handler := flows.NewHandler(generator, logger)

	classifier := llm.NewClassifier(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	assistant := llm.NewAssistant(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)

	chatRouter := router.New(handler, classifier, assistant, logger)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, authManager, sessions, chatRouter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
