package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/pipeline.db")
	if cfg.Database.Path != "/tmp/pipeline.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Board.DriftPolicy != DriftReject {
		t.Fatalf("unexpected drift policy %q", cfg.Board.DriftPolicy)
	}
	if !cfg.UI.ShowOwner || !cfg.UI.ShowDates || !cfg.UI.ShowHelp {
		t.Fatal("expected owner/dates/help enabled by default")
	}
	if cfg.Board.Columns != nil {
		t.Fatal("expected columns to be filled by Load, not Default")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/pipeline.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
	if len(cfg.Board.Columns) != 3 || cfg.Board.Columns[0].ID != "planned" {
		t.Fatalf("expected default columns, got %#v", cfg.Board.Columns)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/pipeline.db"

[logging]
level = "debug"

[board]
drift_policy = "first_column"

[[board.columns]]
id = "backlog"
name = "Backlog"

[[board.columns]]
id = "live"
name = "Live"
color = "#10B981"

[server]
http_bind = ":9000"

[ui]
show_dates = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/pipeline.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.Board.DriftPolicy != DriftFirstColumn {
		t.Fatalf("unexpected drift policy %q", cfg.Board.DriftPolicy)
	}
	if len(cfg.Board.Columns) != 2 || cfg.Board.Columns[1].Color != "#10B981" {
		t.Fatalf("expected configured columns to replace defaults, got %#v", cfg.Board.Columns)
	}
	if cfg.Server.HTTPBind != ":9000" || cfg.Server.APIEndpoint != "/api/v1" {
		t.Fatalf("unexpected server config %#v", cfg.Server)
	}
	if cfg.UI.ShowDates {
		t.Fatal("expected dates hidden from config override")
	}
	if !cfg.UI.ShowOwner {
		t.Fatal("expected owner to keep its default")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"drift policy": "[board]\ndrift_policy = \"guess\"\n",
		"log level":    "[logging]\nlevel = \"loud\"\n",
		"column id":    "[[board.columns]]\nname = \"No id\"\n",
		"duplicate":    "[[board.columns]]\nid = \"a\"\nname = \"A\"\n[[board.columns]]\nid = \"a\"\nname = \"B\"\n",
		"endpoint":     "[server]\napi_endpoint = \"api\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default("/tmp/default.db")); err == nil {
				t.Fatalf("expected error for invalid %s", name)
			}
		})
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
