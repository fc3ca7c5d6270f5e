package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dashloom-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/dashloom-cli/internal/config"
	"github.com/KaramelBytes/dashloom-cli/internal/dashboard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	anaOutputPath string
	anaFormat     string
	anaDelimiter  string
	anaDecimal    string
	anaThousands  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Classify CSV columns and recommend charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		c, err = withCSVFlags(c, anaDelimiter, anaDecimal, anaThousands)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		svc, err := analysisService(c)
		if err != nil {
			return err
		}
		rep, err := svc.Analyze(string(b))
		if err != nil {
			return err
		}
		rep.Name = filepath.Base(path)

		out, err := renderReport(rep, anaFormat)
		if err != nil {
			return err
		}
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
		return nil
	},
}

// analysisService builds a Service without a catalog; analyze stores nothing.
func analysisService(c *cfgpkg.Global) (*dashboard.Service, error) {
	opt, err := c.AnalysisOptions()
	if err != nil {
		return nil, err
	}
	return dashboard.NewService(dashboard.Options{
		Dir:          c.DashboardsDir,
		DefaultTitle: c.DefaultTitle,
		Analysis:     opt,
		Logger:       newLogger(c),
	})
}

func renderReport(rep *analysis.Report, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return []byte(rep.Markdown()), nil
	case "json":
		return json.MarshalIndent(rep, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(rep)
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", format)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "markdown", "output format: markdown|json|yaml")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	analyzeCmd.Flags().StringVar(&anaDecimal, "decimal", "", "decimal separator for numbers (overrides config)")
	analyzeCmd.Flags().StringVar(&anaThousands, "thousands", "", "thousands separator for numbers (overrides config)")
}
