package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/bootstrap"
	"github.com/bnema/deskview/internal/cli/cmd"
	"github.com/bnema/deskview/internal/cli/styles"
	"github.com/bnema/deskview/internal/domain/build"
	"github.com/bnema/deskview/internal/infrastructure/config"
	"github.com/bnema/deskview/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/deskview/internal/logging"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	info := build.Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
	}

	// Run the shell for the run command
	if len(os.Args) > 1 && os.Args[1] == "run" {
		os.Exit(runShell(os.Args[2:], info))
		return
	}

	cmd.SetBuildInfo(info)
	cmd.Execute()
}

func runShell(args []string, info build.Info) int {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "config file")
	quiet := flags.BoolP("quiet", "q", false, "do not print status updates")
	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	var deepLink string
	if flags.NArg() > 0 {
		deepLink = flags.Arg(0)
	}

	mgr, err := newConfigManager(*configFile)
	if err == nil {
		err = mgr.Load()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := mgr.Get()

	logger, logCleanup, err := bootstrap.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logCleanup()
	logger.Info().
		Str("version", info.Version).
		Str("commit", info.Commit).
		Str("build_date", info.BuildDate).
		Msg("starting deskview")
	ctx := logging.WithContext(context.Background(), logger)

	lazyDB := sqlite.NewLazyDB(cfg.Database.Path)
	defer func() { _ = lazyDB.Close() }()

	source := config.NewServerSource(mgr)
	shell, err := bootstrap.NewShell(ctx, bootstrap.ShellInput{
		Views:     cfg.Views,
		Servers:   source.Servers(),
		NavState:  sqlite.NewLazyNavigationStateRepository(lazyDB),
		BuildInfo: info,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to assemble shell")
		return 1
	}

	if !*quiet {
		theme := styles.NewTheme()
		shell.Host.OnStatus(func(msg port.StatusMessage) {
			fmt.Println(styles.StatusLine(theme, msg, tabLabel(shell, msg)))
		})
	}

	source.OnServersChanged(shell.ApplyServers)
	if err := mgr.Watch(); err != nil {
		logger.Warn().Err(err).Msg("config changes will need a restart")
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	watchTerminalSize(runCtx, shell)

	shell.Start(deepLink)
	if err := shell.Run(runCtx); err != nil {
		logger.Error().Err(err).Msg("shell stopped")
		return 1
	}
	logger.Info().Msg("deskview stopped")
	return 0
}

func newConfigManager(path string) (*config.Manager, error) {
	if path != "" {
		return config.NewManagerForFile(path)
	}
	return config.NewManager()
}

// tabLabel names the tab of msg as "server/kind". It runs on the loop.
func tabLabel(shell *bootstrap.Shell, msg port.StatusMessage) string {
	tab := shell.Servers.Tab(msg.TabID)
	if tab == nil {
		return ""
	}
	srv := shell.Servers.Server(tab.ServerID)
	if srv == nil {
		return tab.Kind.String()
	}
	return srv.Name + "/" + tab.Kind.String()
}
