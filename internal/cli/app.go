// Package cli provides the shared state for deskview's subcommands.
package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/application/usecase"
	"github.com/bnema/deskview/internal/bootstrap"
	"github.com/bnema/deskview/internal/cli/styles"
	"github.com/bnema/deskview/internal/domain/build"
	"github.com/bnema/deskview/internal/domain/repository"
	"github.com/bnema/deskview/internal/infrastructure/config"
	"github.com/bnema/deskview/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/deskview/internal/infrastructure/serverinfo"
	"github.com/bnema/deskview/internal/logging"
)

// App holds the dependencies of a CLI invocation. The database is opened
// on first use.
type App struct {
	Config    *config.Config
	Manager   *config.Manager
	Theme     *styles.Theme
	BuildInfo build.Info

	ctx        context.Context
	db         *sqlite.LazyDB
	navState   repository.NavigationStateRepository
	logCleanup func()
}

// NewApp loads the configuration (configFile overrides the XDG location
// when set) and builds the logger.
func NewApp(configFile string) (*App, error) {
	var (
		mgr *config.Manager
		err error
	)
	if configFile != "" {
		mgr, err = config.NewManagerForFile(configFile)
	} else {
		mgr, err = config.NewManager()
	}
	if err != nil {
		return nil, fmt.Errorf("config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()

	// Commands print to the terminal; keep file logging out of the way.
	logCfg := cfg.Logging
	logCfg.EnableFileLog = false
	logger, logCleanup, err := bootstrap.NewLogger(logCfg)
	if err != nil {
		return nil, err
	}
	ctx := logging.WithContext(context.Background(), logger)

	db := sqlite.NewLazyDB(cfg.Database.Path)
	logger.Debug().Str("db_path", cfg.Database.Path).Str("config", mgr.GetConfigFile()).Msg("cli app ready")

	return &App{
		Config:     cfg,
		Manager:    mgr,
		Theme:      styles.NewTheme(),
		ctx:        ctx,
		db:         db,
		navState:   sqlite.NewLazyNavigationStateRepository(db),
		logCleanup: logCleanup,
	}, nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// NavigationState returns the persisted navigation state repository.
func (a *App) NavigationState() repository.NavigationStateRepository {
	return a.navState
}

// Database returns the lazily opened database.
func (a *App) Database() port.DatabaseProvider {
	return a.db
}

// Registry builds a server registry from the configured servers and the
// persisted navigation state, as the shell would at startup.
func (a *App) Registry(ctx context.Context) (*usecase.ServerRegistry, error) {
	servers := usecase.NewServerRegistry(a.navState, uuid.NewString, a.Config.Views.MinimumServerVersion)
	if err := servers.Restore(ctx); err != nil {
		return nil, err
	}
	if err := servers.SyncFromConfig(ctx, a.Config.ServerConfigs()); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("some servers were skipped")
	}
	return servers, nil
}

// Fetcher returns a server info client using the configured user agent.
func (a *App) Fetcher() *serverinfo.Fetcher {
	cfg := bootstrap.ViewConfig(a.Config.Views, a.BuildInfo)
	return serverinfo.NewFetcher(nil, cfg.UserAgent)
}

// Close releases all resources.
func (a *App) Close() error {
	if a.logCleanup != nil {
		a.logCleanup()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
