package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show create/load/delete events recorded for a dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeSvc, err := serviceFromFlags()
		if err != nil {
			return err
		}
		defer closeSvc()
		events, err := svc.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "(no history)")
			return nil
		}
		for _, ev := range events {
			fmt.Fprintf(w, "%s  %-6s  charts=%d  %s\n", ev.At.Local().Format("2006-01-02 15:04:05"), ev.Action, ev.Charts, ev.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
