package cmd

import (
	"fmt"
	"net/url"

	cfgpkg "github.com/KaramelBytes/dashloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DashLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "dashboards_dir: %s\n", c.DashboardsDir)
		fmt.Fprintf(w, "default_title: %s\n", c.DefaultTitle)
		fmt.Fprintf(w, "cache_size: %d\n", c.CacheSize)
		fmt.Fprintf(w, "catalog_driver: %s\n", c.CatalogDriver)
		if c.CatalogDSN != "" {
			fmt.Fprintf(w, "catalog_dsn: %s\n", maskDSN(c.CatalogDSN))
		}
		if c.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", c.Delimiter)
		}
		fmt.Fprintf(w, "decimal_separator: %q\n", c.DecimalSeparator)
		if c.ThousandsSeparator != "" {
			fmt.Fprintf(w, "thousands_separator: %q\n", c.ThousandsSeparator)
		}
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// maskDSN hides the password of URL-style DSNs.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
