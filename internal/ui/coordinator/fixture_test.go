package coordinator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bnema/deskview/internal/application/usecase"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
	"github.com/bnema/deskview/internal/ui/coordinator"
	"github.com/bnema/deskview/internal/ui/mainloop/mainlooptest"
	"github.com/bnema/deskview/internal/ui/view"
	"github.com/bnema/deskview/internal/ui/view/viewtest"
)

func testContext() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

type fixture struct {
	ctx     context.Context
	loop    *mainlooptest.Loop
	host    *viewtest.Host
	factory *viewtest.Factory
	overlay *viewtest.Overlay
	servers *usecase.ServerRegistry
	loading *coordinator.LoadingScreen
	views   *coordinator.ViewRegistry
	router  *coordinator.NavigationRouter
	window  *coordinator.WindowCoordinator
}

// defaultServers is alpha with messaging and playbooks open and boards
// closed, plus beta with the default tab set.
func defaultServers() []entity.ServerConfig {
	return []entity.ServerConfig{
		{
			Name: "alpha",
			URL:  "https://alpha.example.com",
			Tabs: []entity.TabConfig{
				{Kind: entity.TabKindMessaging, Order: 0, IsOpen: true},
				{Kind: entity.TabKindPlaybooks, Order: 1, IsOpen: true},
				{Kind: entity.TabKindBoards, Order: 2, IsOpen: false},
			},
		},
		{Name: "beta", URL: "https://beta.example.com", Order: 1},
	}
}

// newFixture wires the coordinators around fakes. Init is not called.
func newFixture(t *testing.T, configs ...entity.ServerConfig) *fixture {
	t.Helper()
	ctx := testContext()

	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	servers := usecase.NewServerRegistry(nil, ids, "")
	if len(configs) == 0 {
		configs = defaultServers()
	}
	require.NoError(t, servers.SyncFromConfig(ctx, configs))

	f := &fixture{
		ctx:     ctx,
		loop:    mainlooptest.New(),
		host:    viewtest.NewHost(),
		factory: viewtest.NewFactory(),
		overlay: &viewtest.Overlay{},
		servers: servers,
	}
	f.loading = coordinator.NewLoadingScreen(ctx, f.overlay)
	deps := view.Deps{
		Host:       f.host,
		Scheduler:  f.loop,
		Dispatcher: f.loop,
	}
	f.views = coordinator.NewViewRegistry(ctx, servers, f.factory, f.loading, deps, view.DefaultConfig())
	f.router = coordinator.NewNavigationRouter(ctx, servers, f.views, f.host)
	f.window = coordinator.NewWindowCoordinator(ctx, servers, f.views, f.router, f.loading, f.host, f.loop)
	return f
}

func newInitializedFixture(t *testing.T, configs ...entity.ServerConfig) *fixture {
	t.Helper()
	f := newFixture(t, configs...)
	f.window.Init(f.ctx)
	return f
}

func (f *fixture) server(t *testing.T, name string) *entity.Server {
	t.Helper()
	for _, srv := range f.servers.OrderedServers() {
		if srv.Name == name {
			return srv
		}
	}
	t.Fatalf("no server named %s", name)
	return nil
}

func (f *fixture) tab(t *testing.T, serverName string, kind entity.TabKind) entity.TabID {
	t.Helper()
	srv := f.server(t, serverName)
	for _, tab := range f.servers.OrderedTabsForServer(srv.ID) {
		if tab.Kind == kind {
			return tab.ID
		}
	}
	t.Fatalf("server %s has no %s tab", serverName, kind)
	return ""
}

func (f *fixture) content(t *testing.T, tabID entity.TabID) *viewtest.Content {
	t.Helper()
	c := f.factory.Latest(tabID)
	require.NotNil(t, c, "no content created for tab %s", tabID)
	return c
}

// visible returns the ids of every live surface that claims visibility.
func (f *fixture) visible() []entity.TabID {
	var out []entity.TabID
	for id := range f.views.ViewStatuses() {
		if v := f.views.GetView(id); v != nil && v.IsVisible() {
			out = append(out, id)
		}
	}
	return out
}

// makeReady completes the pending load of tabID and signals app readiness.
func (f *fixture) makeReady(t *testing.T, tabID entity.TabID) {
	t.Helper()
	f.content(t, tabID).Succeed()
	f.window.AppInitialized(f.ctx, tabID)
	require.True(t, f.views.GetView(tabID).IsReady())
}
