package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored dashboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeSvc, err := serviceFromFlags()
		if err != nil {
			return err
		}
		defer closeSvc()
		entries, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(w, "(no dashboards)")
			return nil
		}
		for _, e := range entries {
			created := ""
			if !e.CreatedAt.IsZero() {
				created = e.CreatedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "- %s: %s [%s] %s\n", e.ID, e.Title, strings.Join(e.Charts, ","), created)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
