package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete stored dashboards",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeSvc, err := serviceFromFlags()
		if err != nil {
			return err
		}
		defer closeSvc()
		for _, id := range args {
			if err := svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
