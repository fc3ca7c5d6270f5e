package cmd

import (
	"github.com/spf13/cobra"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Rebuild a stored dashboard and print its charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkResultFormat(showFormat); err != nil {
			return err
		}
		svc, closeSvc, err := serviceFromFlags()
		if err != nil {
			return failWith(cmd.OutOrStdout(), showFormat, err)
		}
		defer closeSvc()
		res, err := svc.Get(cmd.Context(), args[0])
		if err != nil {
			return failWith(cmd.OutOrStdout(), showFormat, err)
		}
		return writeResult(cmd.OutOrStdout(), res, showFormat)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "output format: text|json|yaml")
}
