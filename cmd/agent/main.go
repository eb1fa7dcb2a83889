package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/xaenox/hh-agent/internal/agent"
	"github.com/xaenox/hh-agent/internal/ai"
	"github.com/xaenox/hh-agent/internal/auth"
	"github.com/xaenox/hh-agent/internal/hh"
	"github.com/xaenox/hh-agent/internal/resume"
	"github.com/xaenox/hh-agent/internal/storage"
	"github.com/xaenox/hh-agent/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	var portfolio storage.PortfolioStore
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		mem := storage.NewMemoryStorage()
		store, portfolio = mem, mem
	} else {
		logger.Info("Using PostgreSQL storage")
		pg, err := storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
		store, portfolio = pg, pg
	}
	defer store.Close()

	// Initialize the job-board client and the token authority; the authority
	// refreshes tokens through the client, the client fetches tokens from
	// the authority.
	board := hh.NewClient(hh.Config{
		ClientID:     cfg.HH.ClientID,
		ClientSecret: cfg.HH.ClientSecret,
		RedirectURI:  cfg.HH.RedirectURI,
		BaseURL:      cfg.HH.BaseURL,
		OAuthURL:     cfg.HH.OAuthURL,
		UserAgent:    cfg.HH.UserAgent,
	}, logger)
	authority := auth.NewAuthority(store, board, logger)
	board.SetTokenSource(authority)

	assistant := ai.NewClient(ai.Config{
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
	}, logger)

	projector := resume.NewProjector(portfolio)

	supervisor := agent.New(store, board, assistant, authority, projector, nil, logger)
	supervisor.SetMaxQueries(cfg.Agent.MaxQueries)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supervisor.Start(ctx)
	supervisor.Run(ctx)

	supervisor.Stop(context.Background())
	logger.Info("Agent shut down")
}
