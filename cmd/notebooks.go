package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var notebooksCmd = &cobra.Command{
	Use:   "notebooks",
	Short: "Manage destination notebooks",
}

var notebooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notebooks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		nbs, err := s.ListNotebooks(cmd.Context())
		if err != nil {
			return err
		}
		if len(nbs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notebooks. Create one with `webclipper notebooks create <name>`.")
			return nil
		}

		rows := make([][]string, len(nbs))
		for i, nb := range nbs {
			rows[i] = []string{nb.ID, nb.Name, nb.CreatedAt.Local().Format(listTimeLayout)}
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "NAME", "CREATED"}, rows))
		return nil
	},
}

var notebooksCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a notebook",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		nb, err := s.CreateNotebook(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		env.log.WithField("notebook_id", nb.ID).Debug("notebook created")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created notebook %q (%s)\n", nb.Name, nb.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notebooksCmd)
	notebooksCmd.AddCommand(notebooksListCmd, notebooksCreateCmd)
}
