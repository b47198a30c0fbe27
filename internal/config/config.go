// Package config models metronome.yml, the workspace configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mheikkola/metronome/internal/domain"
)

// Permission identifiers accepted in role definitions.
const (
	PermEdit       = "edit"
	PermCreate     = "create"
	PermRunMeeting = "run_meeting"
)

var knownPermissions = map[string]bool{
	PermEdit:       true,
	PermCreate:     true,
	PermRunMeeting: true,
}

// Config models metronome.yml.
type Config struct {
	Backend struct {
		Endpoint  string `yaml:"endpoint"`
		Token     string `yaml:"token"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"backend"`
	Server struct {
		Listen string `yaml:"listen"`
		DBPath string `yaml:"db_path"`
	} `yaml:"server"`
	Role  string              `yaml:"role"`
	Roles map[string][]string `yaml:"roles"`
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "metronome.yml")
}

// Load reads and validates config from the workspace, falling back to
// defaults when the file does not exist.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes. Defaults are
// applied before the file's values so a partial config stays usable.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration: local backend, editor role.
func Default() *Config {
	var cfg Config
	cfg.Backend.Endpoint = "http://localhost:8787"
	cfg.Backend.TimeoutMs = 8000
	cfg.Server.Listen = ":8787"
	cfg.Server.DBPath = "metronome.db"
	cfg.Role = "editor"
	cfg.Roles = map[string][]string{
		"viewer":      {},
		"facilitator": {PermRunMeeting},
		"editor":      {PermEdit, PermCreate, PermRunMeeting},
	}
	return &cfg
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Backend.Endpoint == "" {
		return fmt.Errorf("config.backend.endpoint is required")
	}
	if c.Backend.TimeoutMs <= 0 {
		return fmt.Errorf("config.backend.timeout_ms must be positive")
	}
	if c.Role == "" {
		return fmt.Errorf("config.role is required")
	}
	if _, ok := c.Roles[c.Role]; !ok {
		return fmt.Errorf("config.role %s is not defined in config.roles", c.Role)
	}
	for roleID, perms := range c.Roles {
		if roleID == "" {
			return fmt.Errorf("config.roles contains empty role id")
		}
		for _, perm := range perms {
			if !knownPermissions[perm] {
				return fmt.Errorf("role %s has unknown permission %s", roleID, perm)
			}
		}
	}
	return nil
}

// Permissions resolves the configured role into the permission set the
// dashboard enforces.
func (c *Config) Permissions() domain.Permissions {
	var p domain.Permissions
	for _, perm := range c.Roles[c.Role] {
		switch perm {
		case PermEdit:
			p.CanEdit = true
		case PermCreate:
			p.CanCreate = true
		case PermRunMeeting:
			p.CanRunMeeting = true
		}
	}
	return p
}

// GenerateDefault returns default config YAML for metronome init.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `backend:
  endpoint: http://localhost:8787
  token: ""
  timeout_ms: 8000

server:
  listen: :8787
  db_path: metronome.db

role: editor

roles:
  viewer: []
  facilitator: [run_meeting]
  editor: [edit, create, run_meeting]
`
