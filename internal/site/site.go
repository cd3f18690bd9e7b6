// Package site loads per-tenant site configuration.
package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the per-site configuration file looked up inside
// each site directory.
const ConfigFileName = "peroxide.site.json"

// Route maps a URL path to a template file.
type Route struct {
	Template  string `json:"template"`
	Templated bool   `json:"templated"`
}

// Config describes one hosted site.
type Config struct {
	Domain      string           `json:"domain"`
	ContentDir  string           `json:"content"`
	DatabaseDSN string           `json:"database_dsn"`
	Routes      map[string]Route `json:"routes"`

	// Dir is the site directory the config was loaded from.
	Dir string `json:"-"`
}

// Load reads and validates the site config from dir.
func Load(dir string) (Config, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read site config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse site config: %w", err)
	}

	if cfg.Domain == "" {
		return Config{}, fmt.Errorf("site config %s: domain is required", dir)
	}
	if cfg.ContentDir == "" {
		cfg.ContentDir = "content"
	}
	cfg.Dir = dir

	return cfg, nil
}

// TemplatesDir returns the absolute directory holding the site's templates.
func (c Config) TemplatesDir() string {
	return filepath.Join(c.Dir, c.ContentDir, "templates")
}

// StaticDir returns the absolute directory holding the site's static files.
func (c Config) StaticDir() string {
	return filepath.Join(c.Dir, c.ContentDir, "static")
}
