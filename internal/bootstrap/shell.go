package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/application/usecase"
	"github.com/bnema/deskview/internal/domain/build"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/domain/repository"
	"github.com/bnema/deskview/internal/infrastructure/config"
	"github.com/bnema/deskview/internal/infrastructure/headless"
	"github.com/bnema/deskview/internal/infrastructure/serverinfo"
	"github.com/bnema/deskview/internal/logging"
	"github.com/bnema/deskview/internal/ui/coordinator"
	"github.com/bnema/deskview/internal/ui/mainloop"
	"github.com/bnema/deskview/internal/ui/view"
)

// ShellInput holds what NewShell needs besides the context logger.
type ShellInput struct {
	Views     config.ViewsConfig
	Servers   []entity.ServerConfig
	NavState  repository.NavigationStateRepository // optional; nothing is persisted without it
	Client    *http.Client                         // optional; used for page loads and probes
	IDs       usecase.IDGenerator                  // optional; random UUIDs by default
	BuildInfo build.Info
}

// Shell is the assembled core running on a headless window.
type Shell struct {
	Loop    *mainloop.Loop
	Servers *usecase.ServerRegistry
	Host    *headless.Host
	Overlay *headless.Overlay
	Window  *coordinator.WindowCoordinator

	ctx context.Context
}

// NewShell restores navigation state, applies the configured servers and
// wires the coordinators. Invalid server entries are skipped. Nothing is
// shown until Start.
func NewShell(ctx context.Context, in ShellInput) (*Shell, error) {
	log := logging.FromContext(ctx)
	timer := NewStartupTimer()

	ids := in.IDs
	if ids == nil {
		ids = uuid.NewString
	}
	cfg := ViewConfig(in.Views, in.BuildInfo)

	servers := usecase.NewServerRegistry(in.NavState, ids, cfg.MinimumServerVersion)
	if err := servers.Restore(ctx); err != nil {
		// Navigation state is a convenience; start from the configured defaults.
		log.Warn().Err(err).Msg("navigation state unavailable")
	}
	if err := servers.SyncFromConfig(ctx, in.Servers); err != nil {
		log.Warn().Err(err).Msg("skipped invalid servers")
	}
	timer.Mark("servers")

	s := &Shell{
		Loop:    mainloop.New(),
		Servers: servers,
		Host:    headless.NewHost(ctx),
		ctx:     ctx,
	}
	s.Overlay = headless.NewOverlay(ctx, s.Loop, func() {
		s.Window.LoadingScreenAnimationFinished()
	})
	loading := coordinator.NewLoadingScreen(ctx, s.Overlay)

	deps := view.Deps{
		Host:       s.Host,
		Scheduler:  s.Loop,
		Dispatcher: s.Loop,
		Fetcher:    serverinfo.NewFetcher(in.Client, cfg.UserAgent),
	}
	views := coordinator.NewViewRegistry(ctx, servers, headless.NewFactory(in.Client), loading, deps, cfg)
	router := coordinator.NewNavigationRouter(ctx, servers, views, s.Host)
	s.Window = coordinator.NewWindowCoordinator(ctx, servers, views, router, loading, s.Host, s.Loop)

	// A headless page has no app to announce itself, so a finished load
	// counts as the app reporting readiness.
	s.Host.OnStatus(func(msg port.StatusMessage) {
		if msg.Kind != port.StatusLoadSuccess {
			return
		}
		tabID := msg.TabID
		s.Loop.Post(func() { s.Window.AppInitialized(ctx, tabID) })
	})
	timer.Mark("coordinators")
	timer.Log(ctx)

	return s, nil
}

// ViewConfig maps the views section onto the surface timings. The build
// suffix is appended to the user agent.
func ViewConfig(v config.ViewsConfig, info build.Info) view.Config {
	cfg := view.DefaultConfig()
	if v.RetryInterval > 0 {
		cfg.RetryInterval = v.RetryInterval
	}
	if v.MaxRetries > 0 {
		cfg.MaxRetries = v.MaxRetries
	}
	if v.LoadingScreenTimeout > 0 {
		cfg.LoadingScreenTimeout = v.LoadingScreenTimeout
	}
	if v.ProbeInterval > 0 {
		cfg.ProbeInterval = v.ProbeInterval
	}
	if v.MinimumServerVersion != "" {
		cfg.MinimumServerVersion = v.MinimumServerVersion
	}
	cfg.UserAgent = strings.TrimSpace(v.UserAgent + " " + info.UserAgentSuffix())
	return cfg
}

// Start queues the initial view and, when deepLink is set, the deep link.
func (s *Shell) Start(deepLink string) {
	s.Loop.Post(func() {
		s.Window.Init(s.ctx)
		if deepLink == "" {
			return
		}
		if err := s.Window.DeepLink(s.ctx, deepLink); err != nil {
			logging.FromContext(s.ctx).Warn().Err(err).Str("url", deepLink).Msg("deep link ignored")
		}
	})
}

// ApplyServers queues a reconciliation with a new server list. Safe to call
// from any goroutine.
func (s *Shell) ApplyServers(configs []entity.ServerConfig) {
	s.Loop.Post(func() {
		if err := s.Servers.SyncFromConfig(s.ctx, configs); err != nil {
			logging.FromContext(s.ctx).Error().Err(err).Msg("failed to apply server changes")
		}
	})
}

// Run drives the loop until ctx is done, then tears the views down.
func (s *Shell) Run(ctx context.Context) error {
	err := s.Loop.Run(ctx)
	s.Window.Close(s.ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
