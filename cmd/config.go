package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/webclipper/host/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings and the env vars that override them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var rows [][]string
		for _, info := range config.ShowAll(env.cfg) {
			rows = append(rows, []string{info.Key, info.Value, info.EnvVar})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"KEY", "VALUE", "ENV"}, rows))
		fmt.Fprintf(cmd.OutOrStdout(), "file: %s\n", env.backend.Path())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Write a setting to the config file",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{tolerateBadConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetKey(env.backend, args[0], args[1]); err != nil {
			return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(config.ValidKeys(), ", "))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
