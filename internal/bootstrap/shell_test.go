package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/deskview/internal/domain/build"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/infrastructure/config"
	"github.com/bnema/deskview/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/deskview/internal/logging"
)

func testCtx() context.Context {
	return logging.WithContext(context.Background(), logging.NewFromConfigValues("debug", "console"))
}

func newChatServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v4/config/client"):
			_ = json.NewEncoder(w).Encode(map[string]string{"Version": "10.2.0"})
		case strings.HasPrefix(r.URL.Path, "/api/v4/plugins/webapp"):
			_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "playbooks"}})
		default:
			_, _ = fmt.Fprint(w, "<html></html>")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestViewConfig(t *testing.T) {
	info := build.Info{Version: "1.2.0"}

	cfg := ViewConfig(config.ViewsConfig{}, info)
	assert.Equal(t, 10*time.Second, cfg.RetryInterval)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, entity.DefaultMinimumServerVersion, cfg.MinimumServerVersion)
	assert.Equal(t, "deskview/1.2.0", cfg.UserAgent)

	cfg = ViewConfig(config.ViewsConfig{
		RetryInterval:        time.Second,
		MaxRetries:           5,
		LoadingScreenTimeout: 2 * time.Second,
		ProbeInterval:        time.Minute,
		MinimumServerVersion: "8.0.0",
		UserAgent:            "Mozilla/5.0",
	}, build.Info{})
	assert.Equal(t, time.Second, cfg.RetryInterval)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.LoadingScreenTimeout)
	assert.Equal(t, time.Minute, cfg.ProbeInterval)
	assert.Equal(t, "8.0.0", cfg.MinimumServerVersion)
	assert.Equal(t, "Mozilla/5.0 deskview/dev", cfg.UserAgent)
}

func TestShell_StartRevealsFirstServer(t *testing.T) {
	ctx := testCtx()
	chat := newChatServer(t)

	db, err := sqlite.NewConnection(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	shell, err := NewShell(ctx, ShellInput{
		Views:    config.DefaultConfig().Views,
		Servers:  []entity.ServerConfig{{Name: "local", URL: chat.URL}},
		NavState: sqlite.NewNavigationStateRepository(db),
		Client:   chat.Client(),
		IDs:      sequentialIDs(),
	})
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- shell.Run(runCtx) }()
	shell.Start("")

	inspect := func(fn func()) {
		require.NoError(t, shell.Loop.Invoke(ctx, fn))
	}

	require.Eventually(t, func() bool {
		var hidden bool
		err := shell.Loop.Invoke(ctx, func() { hidden = shell.Host.Top() != nil && !shell.Overlay.Visible() })
		return err == nil && hidden
	}, 5*time.Second, 20*time.Millisecond)

	inspect(func() {
		serverID, tabID := shell.Window.LastActive()
		srv := shell.Servers.Server(serverID)
		require.NotNil(t, srv)
		assert.Equal(t, "local", srv.Name)
		assert.Equal(t, entity.TabKindMessaging, shell.Servers.Tab(tabID).Kind)
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not stop")
	}
}

func TestShell_ApplyServersReconciles(t *testing.T) {
	ctx := testCtx()
	chat := newChatServer(t)

	shell, err := NewShell(ctx, ShellInput{
		Views:   config.DefaultConfig().Views,
		Servers: []entity.ServerConfig{{Name: "local", URL: chat.URL}},
		Client:  chat.Client(),
		IDs:     sequentialIDs(),
	})
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = shell.Run(runCtx) }()
	shell.Start("")

	shell.ApplyServers([]entity.ServerConfig{
		{Name: "local", URL: chat.URL},
		{Name: "second", URL: chat.URL + "/second", Order: 1},
	})

	require.Eventually(t, func() bool {
		var n int
		err := shell.Loop.Invoke(ctx, func() { n = len(shell.Servers.OrderedServers()) })
		return err == nil && n == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestShell_ReloadSendsCookiesFromPreviousLoad(t *testing.T) {
	ctx := testCtx()

	var pageLoads, withCookie atomic.Int32
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v4/config/client"):
			_ = json.NewEncoder(w).Encode(map[string]string{"Version": "10.2.0"})
			return
		case strings.HasPrefix(r.URL.Path, "/api/"):
			_ = json.NewEncoder(w).Encode([]map[string]string{})
			return
		}
		pageLoads.Add(1)
		if c, err := r.Cookie("MMAUTHTOKEN"); err == nil && c.Value == "abc" {
			withCookie.Add(1)
		} else {
			http.SetCookie(w, &http.Cookie{Name: "MMAUTHTOKEN", Value: "abc", Path: "/"})
		}
		_, _ = fmt.Fprint(w, "<html></html>")
	}))
	t.Cleanup(chat.Close)

	shell, err := NewShell(ctx, ShellInput{
		Views:   config.DefaultConfig().Views,
		Servers: []entity.ServerConfig{{Name: "local", URL: chat.URL}},
		Client:  chat.Client(),
		IDs:     sequentialIDs(),
	})
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = shell.Run(runCtx) }()
	shell.Start("")

	require.Eventually(t, func() bool { return pageLoads.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Zero(t, withCookie.Load())

	require.Eventually(t, func() bool {
		var ready bool
		err := shell.Loop.Invoke(ctx, func() { ready = shell.Host.Top() != nil && !shell.Overlay.Visible() })
		return err == nil && ready
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, shell.Loop.Invoke(ctx, func() { shell.Window.ReloadCurrentView(ctx) }))

	require.Eventually(t, func() bool { return withCookie.Load() >= 1 }, 5*time.Second, 20*time.Millisecond,
		"reload carries the cookie set by the first load")
}

func TestShell_SkipsInvalidServers(t *testing.T) {
	shell, err := NewShell(testCtx(), ShellInput{
		Servers: []entity.ServerConfig{
			{Name: "broken", URL: "::not a url"},
			{Name: "good", URL: "https://chat.example.com", Order: 1},
		},
		IDs: sequentialIDs(),
	})
	require.NoError(t, err)

	servers := shell.Servers.OrderedServers()
	require.Len(t, servers, 1)
	assert.Equal(t, "good", servers[0].Name)
}

func TestStartupTimer(t *testing.T) {
	timer := NewStartupTimer()
	timer.Mark("config")
	timer.Mark("servers")
	assert.Equal(t, []string{"config", "servers"}, timer.Phases())
	timer.Log(testCtx())
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()
	logger, cleanup, err := NewLogger(config.LoggingConfig{
		Level:         "debug",
		Format:        "json",
		MaxAge:        1,
		LogDir:        dir,
		EnableFileLog: true,
	})
	require.NoError(t, err)
	logger.Info().Msg("hello")
	cleanup()

	assert.FileExists(t, filepath.Join(dir, logging.LogFileName))
}
