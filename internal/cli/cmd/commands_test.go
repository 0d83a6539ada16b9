package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/deskview/internal/application/port/mocks"
	"github.com/bnema/deskview/internal/application/usecase"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/infrastructure/config"
	"github.com/bnema/deskview/internal/logging"
)

const commandConfig = `
[logging]
level = "error"

[database]
path = "%s"

[[servers]]
name = "work"
url = "https://chat.example.com"

  [[servers.tabs]]
  kind = "playbooks"
  open = true

  [[servers.tabs]]
  kind = "boards"
  open = false

[[servers]]
name = "community"
url = "https://community.example.org/team"
order = 1
`

func testCtx() context.Context {
	return logging.WithContext(context.Background(), logging.NewFromConfigValues("debug", "console"))
}

func testRegistry(t *testing.T) *usecase.ServerRegistry {
	t.Helper()
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	servers := usecase.NewServerRegistry(nil, ids, "")
	require.NoError(t, servers.SyncFromConfig(testCtx(), []entity.ServerConfig{
		{
			Name: "work",
			URL:  "https://chat.example.com",
			Tabs: []entity.TabConfig{
				{Kind: entity.TabKindMessaging, IsOpen: true},
				{Kind: entity.TabKindPlaybooks, Order: 1, IsOpen: true},
				{Kind: entity.TabKindBoards, Order: 2, IsOpen: false},
			},
		},
		{Name: "community", URL: "https://community.example.org/team", Order: 1},
	}))
	return servers
}

// runCommand executes the root command against a config file in a temp dir.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommand(t, writeCommandConfig(t), args...)
}

func writeCommandConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(commandConfig, filepath.Join(dir, "nav.sqlite"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func executeCommand(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	// Flag variables outlive a single Execute.
	serversAddTabs = nil
	serversAddOrder = 0
	// PersistentPostRun is skipped when the command fails.
	if err != nil && app != nil {
		_ = app.Close()
	}
	app = nil
	return out.String(), err
}

func TestServerRows(t *testing.T) {
	servers := testRegistry(t)
	rows := serverRows(servers)
	require.Len(t, rows, 2)

	assert.Equal(t, "work", rows[0][1])
	assert.Equal(t, "https://chat.example.com/", rows[0][2])
	assert.Equal(t, "+messaging +playbooks -boards", rows[0][3])
	assert.Equal(t, "community", rows[1][1])

	_, tabID := firstTab(t, servers, "work", entity.TabKindPlaybooks)
	require.NoError(t, servers.UpdateLastActive(testCtx(), tabID))

	rows = serverRows(servers)
	assert.Equal(t, "●", rows[0][0])
	assert.Equal(t, "playbooks", rows[0][4])
	assert.Empty(t, rows[1][0])
}

func firstTab(t *testing.T, servers *usecase.ServerRegistry, name string, kind entity.TabKind) (entity.ServerID, entity.TabID) {
	t.Helper()
	for _, srv := range servers.OrderedServers() {
		if srv.Name != name {
			continue
		}
		for _, tab := range servers.OrderedTabsForServer(srv.ID) {
			if tab.Kind == kind {
				return srv.ID, tab.ID
			}
		}
	}
	t.Fatalf("no %s tab on %s", kind, name)
	return "", ""
}

func TestResolveURL(t *testing.T) {
	servers := testRegistry(t)

	tests := []struct {
		name    string
		url     string
		want    resolution
		wantErr bool
	}{
		{
			name: "channel goes to messaging",
			url:  "https://chat.example.com/team/channels/town-square",
			want: resolution{Server: "work", Tab: "messaging", TabURL: "https://chat.example.com/", Open: true},
		},
		{
			name: "boards path picks the closed boards tab",
			url:  "https://chat.example.com/boards/workspace/abc",
			want: resolution{Server: "work", Tab: "boards", TabURL: "https://chat.example.com/boards", Open: false},
		},
		{
			name: "subpath server",
			url:  "https://community.example.org/team/channels/general",
			want: resolution{Server: "community", Tab: "messaging", TabURL: "https://community.example.org/team/", Open: true},
		},
		{name: "unknown host", url: "https://elsewhere.example.net/", wantErr: true},
		{name: "garbage", url: "::", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveURL(servers, tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectServers(t *testing.T) {
	configs := []entity.ServerConfig{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got, err := selectServers(configs, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = selectServers(configs, []string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []entity.ServerConfig{{Name: "c"}, {Name: "a"}}, got)

	_, err = selectServers(configs, []string{"missing"})
	require.Error(t, err)
}

func TestProbeServers(t *testing.T) {
	fetcher := mocks.NewMockServerInfoFetcher(t)
	fetcher.EXPECT().FetchServerInfo(mock.Anything, "https://new.example.com").
		Return(entity.RemoteInfo{ServerVersion: "10.1.0", HasPlaybooks: true}, nil)
	fetcher.EXPECT().FetchServerInfo(mock.Anything, "https://old.example.com").
		Return(entity.RemoteInfo{ServerVersion: "7.0.0"}, nil)
	fetcher.EXPECT().FetchServerInfo(mock.Anything, "https://down.example.com").
		Return(entity.RemoteInfo{}, errors.New("connection refused"))

	results := probeServers(testCtx(), fetcher, []entity.ServerConfig{
		{Name: "new", URL: "https://new.example.com"},
		{Name: "old", URL: "https://old.example.com"},
		{Name: "down", URL: "https://down.example.com"},
	}, entity.DefaultMinimumServerVersion)

	require.Len(t, results, 3)
	assert.Equal(t, "new", results[0].Name)
	assert.True(t, results[0].Compatible)
	assert.True(t, results[0].Info.HasPlaybooks)
	assert.False(t, results[1].Compatible)
	assert.EqualError(t, results[2].Err, "connection refused")
	assert.False(t, results[2].Compatible)
}

func TestServersCommand(t *testing.T) {
	out, err := runCommand(t, "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "work")
	assert.Contains(t, out, "https://community.example.org/team/")
	assert.Contains(t, out, "-boards")
}

func TestResolveCommand(t *testing.T) {
	out, err := runCommand(t, "resolve", "https://chat.example.com/playbooks/runs")
	require.NoError(t, err)
	assert.Contains(t, out, "work")
	assert.Contains(t, out, "playbooks")

	_, err = runCommand(t, "resolve", "https://nowhere.example.net/")
	require.Error(t, err)
}

func TestConfigSchemaCommand(t *testing.T) {
	out, err := runCommand(t, "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"servers"`)

	dir := t.TempDir()
	out, err = runCommand(t, "config", "schema", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, dir)
	schemaOutputDir = ""
}

func TestServersAddAndRemoveCommands(t *testing.T) {
	path := writeCommandConfig(t)

	out, err := executeCommand(t, path, "servers", "add", "staging", "staging.example.com", "--tab", "boards:closed", "--tab", "playbooks")
	require.NoError(t, err)
	assert.Contains(t, out, "added staging")

	out, err = executeCommand(t, path, "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "https://staging.example.com/")
	assert.Contains(t, out, "+playbooks")

	_, err = executeCommand(t, path, "servers", "add", "dup", "https://chat.example.com/")
	require.Error(t, err)

	out, err = executeCommand(t, path, "servers", "remove", "staging")
	require.NoError(t, err)
	assert.Contains(t, out, "removed staging")

	out, err = executeCommand(t, path, "servers")
	require.NoError(t, err)
	assert.NotContains(t, out, "staging")

	_, err = executeCommand(t, path, "servers", "rm", "staging")
	require.Error(t, err)
}

func TestParseTabFlags(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []config.TabEntry
		wantErr bool
	}{
		{name: "none", values: nil, want: []config.TabEntry{}},
		{
			name:   "open and closed",
			values: []string{"playbooks", "focalboard:closed"},
			want: []config.TabEntry{
				{Kind: "playbooks", Order: 1, Open: true},
				{Kind: "boards", Order: 2, Open: false},
			},
		},
		{name: "explicit open", values: []string{"boards:open"}, want: []config.TabEntry{{Kind: "boards", Order: 1, Open: true}}},
		{name: "unknown kind", values: []string{"wiki"}, wantErr: true},
		{name: "unknown state", values: []string{"boards:hidden"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTabFlags(tt.values)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
