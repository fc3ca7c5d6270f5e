package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/dashloom-cli/internal/dashboard"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	genCharts    []string
	genTitle     string
	genID        string
	genFormat    string
	genDelimiter string
	genDecimal   string
	genThousands string
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Build and store a dashboard from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkResultFormat(genFormat); err != nil {
			return err
		}
		res, err := runGenerate(cmd, args[0])
		if err != nil {
			return failWith(cmd.OutOrStdout(), genFormat, err)
		}
		return writeResult(cmd.OutOrStdout(), res, genFormat)
	},
}

func runGenerate(cmd *cobra.Command, path string) (*dashboard.Result, error) {
	c, err := ensureConfig()
	if err != nil {
		return nil, err
	}
	c, err = withCSVFlags(c, genDelimiter, genDecimal, genThousands)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	svc, closeSvc, err := openService(c)
	if err != nil {
		return nil, err
	}
	defer closeSvc()

	id := strings.TrimSpace(genID)
	if id == "" {
		id = newDashboardID()
	}
	return svc.Create(cmd.Context(), id, genTitle, string(b), splitCharts(genCharts))
}

// newDashboardID returns a random 32-character hex id.
func newDashboardID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// splitCharts flattens "bar,pie" style values and drops blanks.
func splitCharts(in []string) []string {
	var out []string
	for _, v := range in {
		for _, t := range strings.Split(v, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func checkResultFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text", "json", "yaml", "yml":
		return nil
	default:
		return fmt.Errorf("unsupported --format: %s (use text|json|yaml)", format)
	}
}

// failWith prints the failure envelope for json/yaml output and returns err
// so the exit status still reflects the failure.
func failWith(w io.Writer, format string, err error) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "yaml", "yml":
		_ = writeResult(w, dashboard.Failure(err), format)
	}
	return err
}

func writeResult(w io.Writer, res *dashboard.Result, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
	case "json":
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		fmt.Fprintln(w, string(b))
		return nil
	case "yaml", "yml":
		b, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(w, string(b))
		return nil
	default:
		return fmt.Errorf("unsupported --format: %s (use text|json|yaml)", format)
	}

	fmt.Fprintf(w, "✓ Dashboard %s: %s\n", res.DashboardID, res.Title)
	fmt.Fprintf(w, "  Chart types: %s\n", strings.Join(res.ChartTypes, ", "))
	for _, ch := range res.Charts {
		fmt.Fprintf(w, "  [%d] %-12s %q  %s\n", ch.Slot, ch.Type, ch.Title, describeBindings(ch))
	}
	for _, sk := range res.Skipped {
		fmt.Fprintf(w, "  [%d] %-12s skipped: %s\n", sk.Slot, sk.Type, sk.Reason)
	}
	if !res.Stored {
		fmt.Fprintln(w, "⚠ Dashboard record was not saved; it will not survive this process")
	}
	return nil
}

func describeBindings(ch dashboard.ChartSpec) string {
	switch {
	case ch.Labels != "":
		return fmt.Sprintf("labels=%s values=%s", ch.Labels, ch.Values)
	case ch.XIsIndex:
		return fmt.Sprintf("x=(row) y=%s", ch.Y)
	case ch.Y == "":
		return fmt.Sprintf("x=%s", ch.X)
	default:
		return fmt.Sprintf("x=%s y=%s", ch.X, ch.Y)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringSliceVarP(&genCharts, "charts", "c", nil, "chart types in slot order, e.g. pie,bar (padded to 4)")
	generateCmd.Flags().StringVarP(&genTitle, "title", "t", "", "dashboard title (defaults to config default_title)")
	generateCmd.Flags().StringVar(&genID, "id", "", "dashboard id (random if omitted)")
	generateCmd.Flags().StringVarP(&genFormat, "format", "f", "text", "output format: text|json|yaml")
	generateCmd.Flags().StringVar(&genDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	generateCmd.Flags().StringVar(&genDecimal, "decimal", "", "decimal separator for numbers (overrides config)")
	generateCmd.Flags().StringVar(&genThousands, "thousands", "", "thousands separator for numbers (overrides config)")
}

