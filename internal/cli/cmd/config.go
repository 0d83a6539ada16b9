package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/deskview/internal/cli/styles"
	"github.com/bnema/deskview/internal/infrastructure/config"
)

var schemaOutputDir string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file and database paths",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", app.Theme.Subtle.Render("config  "), app.Manager.GetConfigFile())
		fmt.Fprintf(out, "%s %s\n", app.Theme.Subtle.Render("database"), app.Config.Database.Path)
		fmt.Fprintf(out, "%s %s\n", app.Theme.Subtle.Render("logs    "), app.Config.Logging.LogDir)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file",
	Long: `Load and validate the config file. Loading already fails on an invalid
file, so reaching the summary means the file is valid.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d servers)\n",
			app.Theme.SuccessStyle.Render(styles.IconCheck),
			app.Manager.GetConfigFile(),
			len(app.Config.Servers),
		)
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print or write the JSON schema of the config file",
	Long: `Print the JSON schema of config.toml, or write it next to the config
file with --output so editors can validate it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if schemaOutputDir == "" {
			data, err := config.MarshalSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		path, err := config.WriteSchemaFile(schemaOutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configValidateCmd, configSchemaCmd)
	configSchemaCmd.Flags().StringVarP(&schemaOutputDir, "output", "o", "", "directory to write the schema file to")
}
