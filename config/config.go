package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"tabletop-map/server/models"
)

// Config is the server configuration read from TOML and the environment
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Map     MapConfig     `toml:"map"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port string `toml:"port"`
	Path string `toml:"path"` // websocket endpoint
}

// StorageConfig selects and configures the map store
type StorageConfig struct {
	Type string `toml:"type"` // "json" or "postgres"
	File string `toml:"file"` // json store path
	DSN  string `toml:"dsn"`  // postgres connection string
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level       string `toml:"level"` // debug, info, warn, error
	Development bool   `toml:"development"`
}

// MapConfig holds the defaults for maps created by the server
type MapConfig struct {
	Name       string  `toml:"name"`
	Author     string  `toml:"author"`
	Columns    int     `toml:"columns"`
	Rows       int     `toml:"rows"`
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	grid := models.DefaultGridConfig()
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Path: "/ws",
		},
		Storage: StorageConfig{
			Type: "json",
			File: "maps.json",
			DSN:  "host=localhost user=tabletop password=tabletop dbname=tabletop_map sslmode=disable",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Map: MapConfig{
			Name:       "Untitled",
			Columns:    grid.Columns,
			Rows:       grid.Rows,
			CellWidth:  grid.CellWidth,
			CellHeight: grid.CellHeight,
		},
	}
}

// Load reads a TOML file over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DB_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("DB_FILE"); v != "" {
		c.Storage.File = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "json", "postgres":
	default:
		return fmt.Errorf("config: unknown storage type %q", c.Storage.Type)
	}
	if err := c.Map.Grid().Validate(); err != nil {
		return fmt.Errorf("config: map defaults: %w", err)
	}
	return nil
}

// Grid returns the default grid geometry for new maps
func (m MapConfig) Grid() models.GridConfig {
	return models.GridConfig{
		CellWidth:  m.CellWidth,
		CellHeight: m.CellHeight,
		Columns:    m.Columns,
		Rows:       m.Rows,
	}
}
