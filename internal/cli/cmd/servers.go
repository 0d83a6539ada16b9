package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/bnema/deskview/internal/application/usecase"
	"github.com/bnema/deskview/internal/cli/styles"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/infrastructure/config"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List configured servers and their tabs",
	Long: `List the configured servers in display order with their tabs.

Open tabs are marked with '+', closed ones with '-'. The last active tab
comes from the persisted navigation state, and the current server is
marked with a dot.`,
	RunE: runServers,
}

func init() {
	rootCmd.AddCommand(serversCmd)
}

var serverHeaders = []string{"", "Server", "URL", "Tabs", "Last tab"}

func runServers(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	servers, err := app.Registry(app.Ctx())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rows := serverRows(servers)
	if len(rows) == 0 {
		fmt.Fprintln(out, app.Theme.Subtle.Render("No servers configured in "+app.Manager.GetConfigFile()))
		return nil
	}
	fmt.Fprintln(out, styles.RenderTable(app.Theme, serverHeaders, rows))
	return nil
}

func serverRows(servers *usecase.ServerRegistry) []table.Row {
	var currentID string
	if cur := servers.CurrentServer(); cur != nil {
		currentID = string(cur.ID)
	}

	ordered := servers.OrderedServers()
	rows := make([]table.Row, 0, len(ordered))
	for _, srv := range ordered {
		mark := ""
		if string(srv.ID) == currentID {
			mark = styles.MarkCurrent
		}

		tabs := servers.OrderedTabsForServer(srv.ID)
		names := make([]string, 0, len(tabs))
		for _, tab := range tabs {
			prefix := styles.MarkClosed
			if tab.IsOpen {
				prefix = styles.MarkOpen
			}
			names = append(names, prefix+tab.Kind.String())
		}

		last := ""
		if tab := servers.LastActiveTabForServer(srv.ID); tab != nil {
			last = tab.Kind.String()
		}
		rows = append(rows, table.Row{mark, srv.Name, srv.URLString(), strings.Join(names, " "), last})
	}
	return rows
}

var (
	serversAddTabs  []string
	serversAddOrder int
)

var serversAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a server to the config file",
	Long: `Add a server to the config file.

Tabs default to messaging only. Use --tab to open extra tabs, or add
':closed' to keep one listed but closed:

  deskview servers add work https://chat.example.com --tab playbooks --tab boards:closed

A running shell picks up the change without a restart.`,
	Args: cobra.ExactArgs(2),
	RunE: runServersAdd,
}

var serversRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a server from the config file",
	Args:    cobra.ExactArgs(1),
	RunE:    runServersRemove,
}

func init() {
	serversAddCmd.Flags().StringSliceVarP(&serversAddTabs, "tab", "t", nil, "tab kind to configure, optionally suffixed with :closed")
	serversAddCmd.Flags().IntVar(&serversAddOrder, "order", 0, "display position (default after the last server)")
	serversCmd.AddCommand(serversAddCmd, serversRemoveCmd)
}

func runServersAdd(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	tabs, err := parseTabFlags(serversAddTabs)
	if err != nil {
		return err
	}
	entry := config.ServerEntry{Name: args[0], URL: args[1], Order: serversAddOrder, Tabs: tabs}
	err = app.Manager.UpdateServers(func(entries []config.ServerEntry) ([]config.ServerEntry, error) {
		return config.AddServerEntry(entries, entry)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), app.Theme.SuccessStyle.Render(styles.IconCheck+" added "+strings.TrimSpace(args[0])))
	return nil
}

func runServersRemove(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	err = app.Manager.UpdateServers(func(entries []config.ServerEntry) ([]config.ServerEntry, error) {
		return config.RemoveServerEntry(entries, args[0])
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), app.Theme.SuccessStyle.Render(styles.IconCheck+" removed "+args[0]))
	return nil
}

// parseTabFlags turns "kind" and "kind:closed" values into tab entries.
func parseTabFlags(values []string) ([]config.TabEntry, error) {
	tabs := make([]config.TabEntry, 0, len(values))
	for i, v := range values {
		name, state, _ := strings.Cut(v, ":")
		kind, err := entity.ParseTabKind(name)
		if err != nil {
			return nil, err
		}
		switch state {
		case "", "open", "closed":
		default:
			return nil, fmt.Errorf("tab %q: unknown state %q", name, state)
		}
		tabs = append(tabs, config.TabEntry{Kind: kind.String(), Order: i + 1, Open: state != "closed"})
	}
	return tabs, nil
}
