package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/dashloom-cli/internal/catalog"
	cfgpkg "github.com/KaramelBytes/dashloom-cli/internal/config"
	"github.com/KaramelBytes/dashloom-cli/internal/dashboard"
	"github.com/KaramelBytes/dashloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "dashloom",
	Short: "DashLoom CLI: turn CSV files into chart dashboards",
	Long: `DashLoom classifies the columns of a CSV file, recommends bar, line, pie and
scatter charts, and assembles a four-slot dashboard that is stored on disk and
can be rebuilt later from its id.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dashloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// ensureConfig loads configuration when OnInitialize did not run or failed.
func ensureConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func newLogger(c *cfgpkg.Global) *utils.Logger {
	level := utils.ParseLevel(c.LogLevel)
	if debug {
		level = utils.LevelDebug
	}
	return utils.NewStderrLogger(level)
}

// openService builds the dashboard service from c. The returned closer
// releases the catalog connection.
func openService(c *cfgpkg.Global) (*dashboard.Service, func(), error) {
	log := newLogger(c)
	opt, err := c.AnalysisOptions()
	if err != nil {
		return nil, nil, err
	}
	opts := dashboard.Options{
		Dir:          c.DashboardsDir,
		DefaultTitle: c.DefaultTitle,
		CacheSize:    c.CacheSize,
		Analysis:     opt,
		Logger:       log,
	}
	closer := func() {}
	switch c.CatalogDriver {
	case cfgpkg.CatalogNone, "":
	default:
		cat, err := catalog.Open(c.CatalogDriver, c.CatalogDSN)
		if err != nil {
			// Dashboards still work from the directory without a catalog.
			log.Warn("catalog unavailable: %v", err)
			break
		}
		opts.Catalog = cat
		closer = func() { _ = cat.Close() }
	}
	svc, err := dashboard.NewService(opts)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return svc, closer, nil
}

// withCSVFlags returns a copy of c with non-empty CSV flag values applied.
func withCSVFlags(c *cfgpkg.Global, delimiter, decimal, thousands string) (*cfgpkg.Global, error) {
	cc := *c
	for _, kv := range [][2]string{
		{"delimiter", delimiter},
		{"decimal_separator", decimal},
		{"thousands_separator", thousands},
	} {
		if kv[1] == "" {
			continue
		}
		if err := cc.Set(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	return &cc, nil
}

// serviceFromFlags loads config and opens the service; used by commands that
// only need the stored dashboards.
func serviceFromFlags() (*dashboard.Service, func(), error) {
	c, err := ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return openService(c)
}
