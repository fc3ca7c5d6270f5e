package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	wantDir := filepath.Join(home, ".dashloom", "dashboards")
	if c.DashboardsDir != wantDir {
		t.Fatalf("dashboards_dir = %q, want %q", c.DashboardsDir, wantDir)
	}
	if c.DefaultTitle != "AI Dashboard" || c.CacheSize != 16 || c.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.CatalogDriver != CatalogSQLite || c.CatalogDSN != filepath.Join(wantDir, "catalog.db") {
		t.Fatalf("catalog = %s %s", c.CatalogDriver, c.CatalogDSN)
	}
	opt, err := c.AnalysisOptions()
	if err != nil {
		t.Fatalf("analysis options: %v", err)
	}
	if opt.Delimiter != 0 || opt.DecimalSeparator != '.' || opt.ThousandsSeparator != 0 {
		t.Fatalf("options = %+v", opt)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("default_title: From File\ncache_size: 3\ncatalog_driver: none\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DASHLOOM_CACHE_SIZE", "7")

	c, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DefaultTitle != "From File" {
		t.Fatalf("title = %q", c.DefaultTitle)
	}
	if c.CacheSize != 7 {
		t.Fatalf("env should win, cache_size = %d", c.CacheSize)
	}
	if c.CatalogDriver != CatalogNone || c.CatalogDSN != "" {
		t.Fatalf("catalog = %s %q", c.CatalogDriver, c.CatalogDSN)
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for k, v := range map[string]string{
		"default_title":       "Ops",
		"delimiter":           ";",
		"decimal_separator":   ",",
		"thousands_separator": ".",
		"catalog_driver":      "pg",
		"catalog_dsn":         "postgres://localhost/dash?sslmode=disable",
	} {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if err := Save(c, cfgPath); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.DefaultTitle != "Ops" || got.CatalogDriver != CatalogPostgres {
		t.Fatalf("reloaded = %+v", got)
	}
	opt, err := got.AnalysisOptions()
	if err != nil {
		t.Fatalf("analysis options: %v", err)
	}
	if opt.Delimiter != ';' || opt.DecimalSeparator != ',' || opt.ThousandsSeparator != '.' {
		t.Fatalf("options = %+v", opt)
	}
}

func TestSetValidation(t *testing.T) {
	c := &Global{}
	bad := map[string]string{
		"cache_size":        "-1",
		"catalog_driver":    "mysql",
		"delimiter":         "ab",
		"decimal_separator": "",
		"log_level":         "loud",
		"nope":              "x",
	}
	for k, v := range bad {
		if err := c.Set(k, v); err == nil {
			t.Errorf("set %s=%q should fail", k, v)
		}
	}
	if err := c.Set("delimiter", "tab"); err != nil {
		t.Fatalf("tab delimiter: %v", err)
	}
	c.DecimalSeparator = "."
	c.ThousandsSeparator = "."
	if _, err := c.AnalysisOptions(); err == nil {
		t.Fatalf("equal separators should be rejected")
	}
}
