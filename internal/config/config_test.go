package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ScoreThreshold != 80 {
		t.Errorf("expected default score threshold 80, got %f", cfg.ScoreThreshold)
	}
	if cfg.MatchThreshold != 90 {
		t.Errorf("expected default match threshold 90, got %f", cfg.MatchThreshold)
	}
	if len(cfg.Exclude) == 0 {
		t.Error("expected default exclude patterns")
	}
	if len(cfg.SignificantCommands) == 0 {
		t.Error("expected default significant command prefixes")
	}
}

func TestLoad_FileValuesMergeOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".attest.yaml")
	content := `exclude:
  - tmp
  - "*.bak"
score_threshold: 70
checks:
  - name: build
    command: [go, build, ./...]
    timeout: 90s
  - name: test
    command: [go, test, ./...]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "tmp" {
		t.Errorf("exclude not overridden: %v", cfg.Exclude)
	}
	if cfg.ScoreThreshold != 70 {
		t.Errorf("expected score threshold 70, got %f", cfg.ScoreThreshold)
	}
	// Unset values keep defaults.
	if cfg.MatchThreshold != 90 {
		t.Errorf("expected default match threshold 90, got %f", cfg.MatchThreshold)
	}

	if len(cfg.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(cfg.Checks))
	}
	if cfg.Checks[0].Timeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %v", cfg.Checks[0].Timeout)
	}
	if cfg.Checks[1].Timeout != 0 {
		t.Errorf("expected zero timeout when unset, got %v", cfg.Checks[1].Timeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("exclude: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoad_CheckValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "checks:\n  - command: [go, build]\n"},
		{"missing command", "checks:\n  - name: build\n"},
		{"bad timeout", "checks:\n  - name: build\n    command: [go, build]\n    timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("/explicit.yaml", []string{"ATTEST_CONFIG=/env.yaml"}, "/wd"); got != "/explicit.yaml" {
		t.Errorf("flag must win: %s", got)
	}
	if got := ResolvePath("", []string{"ATTEST_CONFIG=/env.yaml"}, "/wd"); got != "/env.yaml" {
		t.Errorf("env var must win over default: %s", got)
	}
	want := filepath.Join("/wd", ".attest.yaml")
	if got := ResolvePath("", nil, "/wd"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
