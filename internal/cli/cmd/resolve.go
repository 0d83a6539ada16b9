package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/deskview/internal/application/usecase"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Show which server and tab a URL opens in",
	Long: `Resolve a URL the way a deep link is routed: the server whose URL is the
longest prefix wins, and the path picks the tab.

Examples:
  deskview resolve https://chat.example.com/team/channels/town-square
  deskview resolve https://chat.example.com/boards/workspace/abc`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

// resolution is where a URL would be shown.
type resolution struct {
	Server string
	Tab    string
	TabURL string
	Open   bool
}

func runResolve(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	servers, err := app.Registry(app.Ctx())
	if err != nil {
		return err
	}

	res, err := resolveURL(servers, args[0])
	if err != nil {
		return err
	}

	theme := app.Theme
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", theme.Subtle.Render("server"), theme.Title.Render(res.Server))
	fmt.Fprintf(out, "%s %s\n", theme.Subtle.Render("tab   "), theme.Highlight.Render(res.Tab))
	fmt.Fprintf(out, "%s %s\n", theme.Subtle.Render("loads "), res.TabURL)
	if !res.Open {
		fmt.Fprintln(out, theme.WarningStyle.Render("the tab is closed and will be opened"))
	}
	return nil
}

func resolveURL(servers *usecase.ServerRegistry, rawURL string) (resolution, error) {
	srv, tab, ok := servers.LookupTabByURL(rawURL)
	if !ok || srv == nil {
		return resolution{}, fmt.Errorf("no configured server matches %s", rawURL)
	}
	res := resolution{Server: srv.Name}
	if tab != nil {
		res.Tab = tab.Kind.String()
		res.TabURL = tab.URL(srv).String()
		res.Open = tab.IsOpen
	}
	return res, nil
}
