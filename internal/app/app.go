// Package app wires configuration, the climatology store, and the
// controllers into a runnable daemon.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/wxcompute/rainodds/internal/climatology"
	"github.com/wxcompute/rainodds/internal/controllers/restserver"
	"github.com/wxcompute/rainodds/internal/log"
	"github.com/wxcompute/rainodds/pkg/config"
)

// App represents the main application.
type App struct {
	configProvider config.Provider
	logger         *zap.SugaredLogger
}

// New creates a new application instance.
func New(configProvider config.Provider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfgData, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := climatology.NewStore(&cfgData.Storage, a.logger)
	if err != nil {
		return fmt.Errorf("opening climatology store: %w", err)
	}
	defer store.Close()

	started := 0
	for _, controller := range cfgData.Controllers {
		switch controller.Type {
		case "rest":
			if controller.RESTServer == nil {
				return fmt.Errorf("rest controller configured without a rest section")
			}
			ctrl, err := restserver.NewController(ctx, &wg, *controller.RESTServer, store, a.logger)
			if err != nil {
				return fmt.Errorf("creating REST controller: %w", err)
			}
			if err := ctrl.StartController(); err != nil {
				return fmt.Errorf("starting REST controller: %w", err)
			}
			started++
		default:
			return fmt.Errorf("unknown controller type %q", controller.Type)
		}
	}
	if started == 0 {
		return fmt.Errorf("no controllers configured; nothing to serve")
	}

	log.Info("Application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
