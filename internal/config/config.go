package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Drift policies accepted by board.drift_policy.
const (
	DriftReject      = "reject"
	DriftFirstColumn = "first_column"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Server   ServerConfig   `toml:"server"`
	UI       UIConfig       `toml:"ui"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"` // debug | info | warn | error
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	DriftPolicy string         `toml:"drift_policy"`
	SeedSample  bool           `toml:"seed_sample"`
	Columns     []ColumnConfig `toml:"columns"`
}

type ColumnConfig struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type UIConfig struct {
	ShowOwner bool `toml:"show_owner"`
	ShowDates bool `toml:"show_dates"`
	ShowHelp  bool `toml:"show_help"`
}

// DefaultColumns returns the columns used when neither the config file nor the
// catalog supplies any.
func DefaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "planned", Name: "Planned", Color: "#6B7280"},
		{ID: "in_progress", Name: "In Progress", Color: "#F59E0B"},
		{ID: "done", Name: "Done", Color: "#10B981"},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".pipeline/log",
			},
		},
		Board: BoardConfig{
			DriftPolicy: DriftReject,
			SeedSample:  true,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:5437",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		UI: UIConfig{
			ShowOwner: true,
			ShowDates: true,
			ShowHelp:  true,
		},
	}
}

// Load reads path over defaults. Columns are left out of the defaults so a
// file that lists [[board.columns]] replaces them instead of appending.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		case len(content) > 0:
			if err := toml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode toml: %w", err)
			}
		}
	}
	if len(cfg.Board.Columns) == 0 {
		cfg.Board.Columns = DefaultColumns()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	switch strings.TrimSpace(strings.ToLower(c.Board.DriftPolicy)) {
	case "", DriftReject, DriftFirstColumn:
	default:
		return fmt.Errorf("invalid board.drift_policy: %q", c.Board.DriftPolicy)
	}

	seenColumnID := map[string]struct{}{}
	for idx, column := range c.Board.Columns {
		id := strings.TrimSpace(column.ID)
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if strings.TrimSpace(column.Name) == "" {
			return fmt.Errorf("board.columns[%d].name is required", idx)
		}
		if _, ok := seenColumnID[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		seenColumnID[id] = struct{}{}
	}

	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
