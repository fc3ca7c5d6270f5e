package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dashloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write the CSV data stored for a dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeSvc, err := serviceFromFlags()
		if err != nil {
			return err
		}
		defer closeSvc()
		csv, err := svc.ExportCSV(args[0])
		if err != nil {
			return err
		}
		if exportOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), csv)
			return nil
		}
		if err := utils.SafeWriteFile(exportOutput, []byte(csv)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (stdout if omitted)")
}
