// Package daemon runs the long-lived HTTP surface over a tool registry:
// a JSON API for listing and flipping tools, snapshot persistence, and a
// cron-driven scheduler for unattended toggles.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "devtools.yaml"
	homeConfigName    = "config.yaml"
	homeConfigDir     = ".devtools"
)

// Config is the declarative startup config shape for daemon mode.
type Config struct {
	Server    ServerSettings             `yaml:"server,omitempty"`
	Tools     map[string]ToolDeclaration `yaml:"tools,omitempty"`
	Schedules []ScheduleDeclaration      `yaml:"schedules,omitempty"`
}

// ServerSettings holds HTTP listener options.
type ServerSettings struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// ToolDeclaration seeds one tool's enabled flag at startup. The map key is
// the tool's display name.
type ToolDeclaration struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// ScheduleDeclaration defines one recurring action in devtools.yaml. Exactly
// one of Tool (with Action) or Command must be set.
type ScheduleDeclaration struct {
	Cron    string `yaml:"cron"`
	Tool    string `yaml:"tool,omitempty"`
	Action  string `yaml:"action,omitempty"`
	Command string `yaml:"command,omitempty"`
	Payload string `yaml:"payload,omitempty"`
}

// Validate checks structural rules the YAML decoder cannot express.
func (c *Config) Validate() error {
	for i, decl := range c.Schedules {
		if err := decl.validate(); err != nil {
			return fmt.Errorf("schedule %d: %w", i, err)
		}
	}
	return nil
}

func (d ScheduleDeclaration) validate() error {
	if strings.TrimSpace(d.Cron) == "" {
		return errors.New("cron expression is required")
	}
	if _, err := parseCronExpressionUTC(d.Cron); err != nil {
		return err
	}

	hasTool := strings.TrimSpace(d.Tool) != ""
	hasCommand := strings.TrimSpace(d.Command) != ""
	switch {
	case hasTool == hasCommand:
		return errors.New("exactly one of tool or command must be set")
	case hasTool:
		switch strings.TrimSpace(d.Action) {
		case "enable", "disable", "toggle":
		default:
			return fmt.Errorf("action must be enable, disable, or toggle (got %q)", d.Action)
		}
	case hasCommand:
		if strings.TrimSpace(d.Action) != "" {
			return errors.New("action is only valid with tool schedules")
		}
	}
	return nil
}

// LoadConfig reads and validates a daemon config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates config bytes.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DiscoverConfigPath resolves the daemon config location with first-match
// semantics: explicit path, then ./devtools.yaml, then ~/.devtools/config.yaml.
func DiscoverConfigPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverConfigPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverConfigPathFrom is a testable variant of DiscoverConfigPath.
func DiscoverConfigPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	explicit := strings.TrimSpace(explicitPath) != ""
	candidates := make([]string, 0, 2)
	if explicit {
		candidates = append(candidates, filepath.Clean(strings.TrimSpace(explicitPath)))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, homeConfigDir, homeConfigName))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat config candidate: %w", err)
		}
	}
	if explicit {
		return "", false, fmt.Errorf("config file %q not found", candidates[0])
	}
	return "", false, nil
}
