package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	gbCharts    []string
	gbDelimiter string
	gbDecimal   string
	gbThousands string
	gbQuiet     bool
	gbKeepGoing bool
)

var generateBatchCmd = &cobra.Command{
	Use:   "generate-batch <files...>",
	Short: "Build one dashboard per CSV file, with progress",
	Long: `Build one dashboard per input file. Globs are expanded. Each dashboard id is
derived from the file name; name collisions get a numeric suffix.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		c, err = withCSVFlags(c, gbDelimiter, gbDecimal, gbThousands)
		if err != nil {
			return err
		}
		svc, closeSvc, err := openService(c)
		if err != nil {
			return err
		}
		defer closeSvc()

		w := cmd.OutOrStdout()
		charts := splitCharts(gbCharts)
		total, failed := len(files), 0
		for i, path := range files {
			if !gbQuiet {
				fmt.Fprintf(w, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			id := uniqueID(svc.Store().Dir, idFromPath(path))
			base := filepath.Base(path)
			title := strings.TrimSuffix(base, filepath.Ext(base))
			res, err := svc.Create(cmd.Context(), id, title, string(b), charts)
			if err != nil {
				if !gbKeepGoing {
					return fmt.Errorf("%s: %w", base, err)
				}
				failed++
				fmt.Fprintf(w, "✗ %s: %v\n", base, err)
				continue
			}
			if !gbQuiet {
				fmt.Fprintf(w, "✓ %s -> %s (%d charts)\n", base, res.DashboardID, len(res.Charts))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

// expandInputs expands globs, keeps literal existing paths, dedupes and sorts.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// idFromPath turns a file name into a dashboard id of [a-z0-9-].
func idFromPath(path string) string {
	base := filepath.Base(path)
	s := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	var b strings.Builder
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune('-')
		}
	}
	id := strings.Trim(b.String(), "-")
	if id == "" {
		id = "dashboard"
	}
	return id
}

// uniqueID appends -2, -3, ... until dir(id) does not exist.
func uniqueID(dir func(string) string, id string) string {
	if _, err := os.Stat(dir(id)); os.IsNotExist(err) {
		return id
	}
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s-%d", id, idx)
		if _, err := os.Stat(dir(cand)); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(generateBatchCmd)
	generateBatchCmd.Flags().StringSliceVarP(&gbCharts, "charts", "c", nil, "chart types applied to every dashboard")
	generateBatchCmd.Flags().StringVar(&gbDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	generateBatchCmd.Flags().StringVar(&gbDecimal, "decimal", "", "decimal separator for numbers (overrides config)")
	generateBatchCmd.Flags().StringVar(&gbThousands, "thousands", "", "thousands separator for numbers (overrides config)")
	generateBatchCmd.Flags().BoolVar(&gbQuiet, "quiet", false, "suppress progress output")
	generateBatchCmd.Flags().BoolVar(&gbKeepGoing, "keep-going", false, "continue after a file fails")
}
