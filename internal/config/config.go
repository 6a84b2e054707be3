// Package config loads auditor configuration from YAML: snapshot
// exclude patterns, significant command prefixes, score thresholds, and
// external check commands. A missing file yields defaults; a malformed
// file is a user-input error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"attest/internal/checks"
	"attest/internal/match"
)

// Config holds all tunable auditor settings.
type Config struct {
	Exclude             []string      // Snapshot exclude patterns
	SignificantCommands []string      // Bash prefixes that make an execution significant
	ScoreThreshold      float64       // verify passes at or above this composite score
	MatchThreshold      float64       // validate passes at or above this claimedVsActual
	Checks              []checks.Check
}

// configFile represents the YAML file structure.
type configFile struct {
	Exclude             []string     `yaml:"exclude,omitempty"`
	SignificantCommands []string     `yaml:"significant_commands,omitempty"`
	ScoreThreshold      *float64     `yaml:"score_threshold,omitempty"`
	MatchThreshold      *float64     `yaml:"match_threshold,omitempty"`
	Checks              []checkEntry `yaml:"checks,omitempty"`
}

// checkEntry represents a single check entry in YAML.
type checkEntry struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Timeout string   `yaml:"timeout,omitempty"`
}

// DefaultExclude are the ignore-paths every snapshot skips: build
// artifacts, dependency directories, and version-control metadata.
var DefaultExclude = []string{
	".git", "node_modules", "dist", "build", "target",
	"__pycache__", ".venv", "vendor", ".attest",
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Exclude:             append([]string{}, DefaultExclude...),
		SignificantCommands: append([]string{}, match.DefaultCommandPrefixes...),
		ScoreThreshold:      80,
		MatchThreshold:      90,
		Checks:              []checks.Check{},
	}
}

// Load reads configuration from path, merging file values over
// defaults. A missing file returns defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return Config{}, fmt.Errorf("invalid config YAML: %w", err)
	}

	if len(cf.Exclude) > 0 {
		cfg.Exclude = cf.Exclude
	}
	if len(cf.SignificantCommands) > 0 {
		cfg.SignificantCommands = cf.SignificantCommands
	}
	if cf.ScoreThreshold != nil {
		cfg.ScoreThreshold = *cf.ScoreThreshold
	}
	if cf.MatchThreshold != nil {
		cfg.MatchThreshold = *cf.MatchThreshold
	}

	for i, entry := range cf.Checks {
		if entry.Name == "" {
			return Config{}, fmt.Errorf("check at index %d: missing required field 'name'", i)
		}
		if len(entry.Command) == 0 {
			return Config{}, fmt.Errorf("check '%s': missing required field 'command'", entry.Name)
		}

		check := checks.Check{Name: entry.Name, Command: entry.Command}
		if entry.Timeout != "" {
			d, err := time.ParseDuration(entry.Timeout)
			if err != nil {
				return Config{}, fmt.Errorf("check '%s': invalid timeout: %w", entry.Name, err)
			}
			check.Timeout = d
		}
		cfg.Checks = append(cfg.Checks, check)
	}

	return cfg, nil
}

// ResolvePath returns the config path from the flag value, the
// ATTEST_CONFIG env var, or `.attest.yaml` in the working directory.
func ResolvePath(flagValue string, environ []string, workdir string) string {
	if flagValue != "" {
		return flagValue
	}
	for _, env := range environ {
		if strings.HasPrefix(env, "ATTEST_CONFIG=") {
			return strings.TrimPrefix(env, "ATTEST_CONFIG=")
		}
	}
	return filepath.Join(workdir, ".attest.yaml")
}
