// Package cmd provides Cobra CLI commands for deskview.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/deskview/internal/cli"
	"github.com/bnema/deskview/internal/domain/build"
)

var (
	app        *cli.App
	buildInfo  build.Info
	configFile string
	rootCmd    = &cobra.Command{
		Use:   "deskview",
		Short: "Desktop shell for self-hosted chat servers",
		Long: `deskview hosts one view per server and tab (messaging, playbooks, boards)
and keeps exactly one of them in front.

Views load in the background, retry on network failures, and are probed
while unreachable. Switching servers or tabs and following deep links
goes through a single navigation router, and the last active tab of every
server is restored on the next start.

Use 'deskview run' to start the shell, or the subcommands to inspect the
configured servers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "gen-docs", "run":
				return nil
			}

			var err error
			app, err = cli.NewApp(configFile)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// runCmd is a placeholder for help - actual execution is in main.go
var runCmd = &cobra.Command{
	Use:   "run [deep-link]",
	Short: "Start the shell",
	Long: `Start the shell on the configured servers.

If a deep link is given, the matching server and tab are revealed and the
link is opened in place once the view is ready.

Examples:
  deskview run
  deskview run https://chat.example.com/team/channels/town-square
  deskview run https://chat.example.com/playbooks/runs`,
	Run: func(_ *cobra.Command, _ []string) {
		// This is handled by main.go before cobra runs
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default $XDG_CONFIG_HOME/deskview/config.toml)")
	rootCmd.AddCommand(runCmd)
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}

func requireApp() (*cli.App, error) {
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}
