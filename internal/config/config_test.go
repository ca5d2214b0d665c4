package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadConfig_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `verify: true
workers: 3
report_file: reports/last.json
log_level: DEBUG
log_file: /var/log/flatten-go.log
assume_yes: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Verify || !cfg.AssumeYes {
		t.Errorf("Expected verify and assume_yes to be set, got %+v", cfg)
	}
	if cfg.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", cfg.Workers)
	}
	if cfg.ReportFile != "reports/last.json" {
		t.Errorf("Expected report_file %q, got %q", "reports/last.json", cfg.ReportFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected normalised log_level %q, got %q", "debug", cfg.LogLevel)
	}
	if cfg.LogFile != "/var/log/flatten-go.log" {
		t.Errorf("Unexpected log_file %q", cfg.LogFile)
	}
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig should return default config for nonexistent file, got error: %v", err)
	}

	if cfg.Workers != runtime.NumCPU()*2 {
		t.Errorf("Expected default workers, got %d", cfg.Workers)
	}
	if cfg.Verify || cfg.AssumeYes || cfg.ReportFile != "" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("verify: [\n  invalid"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("LoadConfig should return error for invalid YAML")
	}
}

func TestLoadConfig_EmptyConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "empty.yaml")

	if err := os.WriteFile(configPath, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed for empty config: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Empty config should keep default log level, got %q", cfg.LogLevel)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tmpDir := t.TempDir()

	for name, content := range map[string]string{
		"workers.yaml": "workers: 0\n",
		"level.yaml":   "log_level: loud\n",
	} {
		configPath := filepath.Join(tmpDir, name)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
