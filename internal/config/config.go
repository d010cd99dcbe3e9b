// Package config loads the watch configuration file and supplies the
// watch list, re-reading it once per poll cycle.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/mvnwatch/internal/core"
	"github.com/git-pkgs/mvnwatch/internal/semver"
	"github.com/git-pkgs/mvnwatch/internal/watch"
)

// Duration is a time.Duration that unmarshals from strings like "90s"
// or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Target is one watched coordinate. In YAML it may be a bare string
// ("com.example:demo") or a mapping with an optional constraint.
type Target struct {
	Coordinate string `yaml:"coordinate"`
	Constraint string `yaml:"constraint,omitempty"`
}

func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&t.Coordinate)
	}

	type plain Target
	return value.Decode((*plain)(t))
}

// Config is the watch daemon configuration.
type Config struct {
	Repository  string   `yaml:"repository,omitempty"`
	Interval    Duration `yaml:"interval,omitempty"`
	WebhookURL  string   `yaml:"webhook_url,omitempty"`
	MetricsAddr string   `yaml:"metrics_addr,omitempty"`
	Targets     []Target `yaml:"targets"`
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Interval == 0 {
		cfg.Interval = Duration(watch.DefaultInterval)
	}
	return &cfg, nil
}

// WatchTargets validates and converts the configured targets. A
// coordinate carrying an explicit version is a configuration error:
// watch mode observes all future versions.
func (c *Config) WatchTargets() ([]watch.Target, error) {
	targets := make([]watch.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		coord, version, _, err := core.ParseTarget(t.Coordinate)
		if err != nil {
			return nil, err
		}
		if version != "" {
			return nil, &core.InvalidCoordinateError{
				Input:  t.Coordinate,
				Reason: "watch targets must not include a version",
			}
		}

		target := watch.Target{Coordinate: coord}
		if t.Constraint != "" {
			constraint, err := semver.ParseConstraint(t.Constraint)
			if err != nil {
				return nil, err
			}
			target.Constraint = constraint
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// File supplies watch targets from a configuration file, reading it
// fresh on every call so edits take effect on the next cycle.
type File struct {
	path string
}

// NewFile creates a file-backed target source.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Targets() ([]watch.Target, error) {
	cfg, err := Load(f.path)
	if err != nil {
		return nil, err
	}
	return cfg.WatchTargets()
}
