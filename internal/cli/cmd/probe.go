package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/cli/styles"
	"github.com/bnema/deskview/internal/domain/entity"
)

const (
	probeParallelism   = 4
	defaultProbeTimeout = 10 * time.Second
)

var probeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe [server...]",
	Short: "Ask each server for its version and plugins",
	Long: `Query every configured server (or the named ones) for its version and
installed plugins, and report whether the shell would display it.

Examples:
  deskview probe
  deskview probe work --timeout 3s`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", defaultProbeTimeout, "timeout for the whole probe")
}

// probeResult is the outcome for one server.
type probeResult struct {
	Name       string
	URL        string
	Info       entity.RemoteInfo
	Compatible bool
	Err        error
}

var probeHeaders = []string{"Server", "Version", "Compatible", "Playbooks", "Boards", "Error"}

func runProbe(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	targets, err := selectServers(app.Config.ServerConfigs(), args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(app.Ctx(), probeTimeout)
	defer cancel()
	results := probeServers(ctx, app.Fetcher(), targets, app.Config.Views.MinimumServerVersion)

	theme := app.Theme
	rows := make([]table.Row, 0, len(results))
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		rows = append(rows, table.Row{
			r.Name,
			r.Info.ServerVersion,
			strconv.FormatBool(r.Compatible),
			strconv.FormatBool(r.Info.HasPlaybooks),
			strconv.FormatBool(r.Info.HasBoards),
			errText,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.RenderTable(theme, probeHeaders, rows))
	return nil
}

func selectServers(configs []entity.ServerConfig, names []string) ([]entity.ServerConfig, error) {
	if len(names) == 0 {
		return configs, nil
	}
	byName := make(map[string]entity.ServerConfig, len(configs))
	for _, c := range configs {
		byName[c.Name] = c
	}
	out := make([]entity.ServerConfig, 0, len(names))
	for _, name := range names {
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("no server named %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}

// probeServers fetches every server concurrently. Failures are reported
// per server and never cancel the others.
func probeServers(
	ctx context.Context,
	fetcher port.ServerInfoFetcher,
	servers []entity.ServerConfig,
	minimumVersion string,
) []probeResult {
	results := make([]probeResult, len(servers))

	var g errgroup.Group
	g.SetLimit(probeParallelism)
	for i, srv := range servers {
		g.Go(func() error {
			res := probeResult{Name: srv.Name, URL: srv.URL}
			info, err := fetcher.FetchServerInfo(ctx, srv.URL)
			if err != nil {
				res.Err = err
			} else {
				res.Info = info
				res.Compatible = info.KnownVersionAtLeast(minimumVersion)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
