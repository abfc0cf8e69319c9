package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/nhle/school-dashboard/internal/api"
	"github.com/nhle/school-dashboard/internal/app"
	"github.com/nhle/school-dashboard/internal/cache"
	"github.com/nhle/school-dashboard/internal/desktop"
	"github.com/nhle/school-dashboard/internal/logging"
	"github.com/nhle/school-dashboard/internal/model"
	"github.com/nhle/school-dashboard/internal/notify"
	"github.com/nhle/school-dashboard/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "school-dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional; local development overrides live in .env.
	_ = godotenv.Load()

	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.DefaultLogPath())
	if err != nil {
		logger = logging.Nop()
	}
	defer logger.Sync()

	token := app.ResolveToken()

	client := api.NewClient(cfg.Server.BaseURL, token)
	router := ws.NewRouter(logger)
	manager := ws.NewManager(cfg.Server.SocketURL, ws.GorillaDialer{}, router, logger)
	store := notify.NewStore()
	service := notify.NewService(client, model.UserRole(cfg.Portal.Role), logger)
	bridge := desktop.NewBridge(logger)

	// The cache is best effort; the dashboard works without it.
	var notifCache *cache.Cache
	if c, err := cache.Open(model.DefaultCachePath()); err != nil {
		logger.Warnw("opening notification cache", "error", err)
	} else {
		notifCache = c
		pruneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := c.Prune(pruneCtx, time.Now().AddDate(0, -3, 0)); err != nil {
			logger.Warnw("pruning notification cache", "error", err)
		}
		cancel()
	}

	root := app.New(app.Deps{
		Config:  cfg,
		Client:  client,
		Manager: manager,
		Router:  router,
		Store:   store,
		Service: service,
		Cache:   notifCache,
		Bridge:  bridge,
		Logger:  logger,
		Token:   token,
	})

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
