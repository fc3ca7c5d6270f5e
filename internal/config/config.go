package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dashloom-cli/internal/analysis"
	"github.com/KaramelBytes/dashloom-cli/internal/utils"
)

// Catalog drivers accepted by catalog_driver.
const (
	CatalogSQLite   = "sqlite"
	CatalogPostgres = "postgres"
	CatalogNone     = "none"
)

// Global configuration structure.
type Global struct {
	DashboardsDir string `mapstructure:"dashboards_dir" yaml:"dashboards_dir"`
	DefaultTitle  string `mapstructure:"default_title" yaml:"default_title"`
	CacheSize     int    `mapstructure:"cache_size" yaml:"cache_size"`

	// Catalog (sqlite | postgres | none)
	CatalogDriver string `mapstructure:"catalog_driver" yaml:"catalog_driver"`
	CatalogDSN    string `mapstructure:"catalog_dsn" yaml:"catalog_dsn,omitempty"`

	// CSV parsing; empty delimiter means sniff from the header.
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter,omitempty"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator,omitempty"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Dir returns ~/.dashloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dashloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dashloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from .env, env, file and defaults.
// Precedence: env (including .env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DASHLOOM")
	v.AutomaticEnv()

	v.SetDefault("dashboards_dir", "~/.dashloom/dashboards")
	v.SetDefault("default_title", "AI Dashboard")
	v.SetDefault("cache_size", 16)
	v.SetDefault("catalog_driver", CatalogSQLite)
	v.SetDefault("catalog_dsn", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.resolve(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Global) resolve() error {
	dir, err := utils.ExpandHome(c.DashboardsDir)
	if err != nil {
		return err
	}
	c.DashboardsDir = dir
	c.CatalogDriver = strings.ToLower(strings.TrimSpace(c.CatalogDriver))
	if c.CatalogDriver == CatalogSQLite {
		if c.CatalogDSN == "" {
			c.CatalogDSN = filepath.Join(c.DashboardsDir, "catalog.db")
		} else if c.CatalogDSN, err = utils.ExpandHome(c.CatalogDSN); err != nil {
			return err
		}
	}
	return nil
}

// Set validates and assigns one key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "dashboards_dir":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("dashboards_dir cannot be empty")
		}
		c.DashboardsDir = val
	case "default_title":
		c.DefaultTitle = val
	case "cache_size":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for cache_size: %v", val)
		}
		c.CacheSize = i
	case "catalog_driver":
		switch strings.ToLower(val) {
		case CatalogSQLite, "sqlite3":
			c.CatalogDriver = CatalogSQLite
		case CatalogPostgres, "postgresql", "pg":
			c.CatalogDriver = CatalogPostgres
		case CatalogNone, "off", "":
			c.CatalogDriver = CatalogNone
		default:
			return fmt.Errorf("invalid catalog_driver: %s (use sqlite, postgres or none)", val)
		}
	case "catalog_dsn":
		c.CatalogDSN = val
	case "delimiter":
		if _, err := parseSeparator(val, true); err != nil {
			return fmt.Errorf("invalid delimiter: %w", err)
		}
		c.Delimiter = val
	case "decimal_separator":
		if _, err := parseSeparator(val, false); err != nil {
			return fmt.Errorf("invalid decimal_separator: %w", err)
		}
		c.DecimalSeparator = val
	case "thousands_separator":
		if _, err := parseSeparator(val, true); err != nil {
			return fmt.Errorf("invalid thousands_separator: %w", err)
		}
		c.ThousandsSeparator = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "warning", "error", "off":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn, error or off)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// AnalysisOptions converts the CSV settings.
func (c *Global) AnalysisOptions() (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	d, err := parseSeparator(c.Delimiter, true)
	if err != nil {
		return opt, fmt.Errorf("delimiter: %w", err)
	}
	dec, err := parseSeparator(c.DecimalSeparator, true)
	if err != nil {
		return opt, fmt.Errorf("decimal_separator: %w", err)
	}
	th, err := parseSeparator(c.ThousandsSeparator, true)
	if err != nil {
		return opt, fmt.Errorf("thousands_separator: %w", err)
	}
	opt.Delimiter = d
	if dec != 0 {
		opt.DecimalSeparator = dec
	}
	opt.ThousandsSeparator = th
	if opt.ThousandsSeparator != 0 && opt.ThousandsSeparator == opt.DecimalSeparator {
		return opt, fmt.Errorf("thousands_separator and decimal_separator must differ")
	}
	return opt, nil
}

// parseSeparator accepts a single character, or "tab"/"\t".
func parseSeparator(s string, allowEmpty bool) (rune, error) {
	switch s {
	case "":
		if allowEmpty {
			return 0, nil
		}
		return 0, fmt.Errorf("value required")
	case "tab", `\t`:
		return '\t', nil
	case "space":
		return ' ', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%q is not a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
