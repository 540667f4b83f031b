// Package config loads seatmap.yaml.
//
// A config file only needs the fields it changes; everything else keeps the
// value from Default:
//
//	registry:
//	  path: rooms.json
//	workers: 4
//	pipeline:
//	  ocr:
//	    timeout: 45s
//	  selection:
//	    policy: fixed
//	    profile: blob
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/seatmap/internal/pipeline"
	"github.com/ironsheep/seatmap/internal/registry"
)

// Config is the complete seatmap configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	// ImagesDir resolves relative room image paths. Empty means the directory
	// of the registry file.
	ImagesDir string `yaml:"images_dir"`
	// Workers is the number of rooms processed concurrently.
	Workers int `yaml:"workers"`
	// Checkpoint saves the registry after every room.
	Checkpoint bool `yaml:"checkpoint"`
	// OverlayDir, when set, receives a diagnostic PNG per room.
	OverlayDir string `yaml:"overlay_dir"`
	// OverlayGrid is the coordinate grid spacing on overlays, 0 for none.
	OverlayGrid int `yaml:"overlay_grid"`

	Pipeline pipeline.Params `yaml:"pipeline"`
}

// RegistryConfig locates the room registry.
type RegistryConfig struct {
	Path    string           `yaml:"path"`
	Backend registry.Backend `yaml:"backend"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			Path:    "rooms.json",
			Backend: registry.BackendJSON,
		},
		Workers:  4,
		Pipeline: pipeline.DefaultParams(),
	}
}

// Load reads the YAML file at path over Default and validates the result.
// An empty path returns the defaults. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Registry.Path == "" {
		return errors.New("registry.path is required")
	}
	switch c.Registry.Backend {
	case registry.BackendJSON, registry.BackendSQLite:
	default:
		return errors.Errorf("unsupported registry.backend %q (use json or sqlite)", c.Registry.Backend)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be > 0, got %d", c.Workers)
	}
	if c.OverlayGrid < 0 {
		return errors.Errorf("overlay_grid must be >= 0, got %d", c.OverlayGrid)
	}
	return errors.Wrap(c.Pipeline.Validate(), "pipeline")
}

// ImagesRoot returns the directory relative image paths resolve against.
func (c *Config) ImagesRoot() string {
	if c.ImagesDir != "" {
		return c.ImagesDir
	}
	return filepath.Dir(c.Registry.Path)
}
