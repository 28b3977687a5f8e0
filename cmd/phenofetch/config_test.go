package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	if config.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", config.BatchSize)
	}
	if config.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", config.TimeoutSeconds)
	}
	if config.Workers != 0 {
		t.Errorf("Workers = %d, want 0 (auto)", config.Workers)
	}
	if !config.SkipExisting {
		t.Error("SkipExisting = false, want true")
	}
	if config.FileTypes != "all" {
		t.Errorf("FileTypes = %q, want all", config.FileTypes)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"site": "ABBY", "product": "DP1.00033", "batch_size": 25, "s3_bucket": "my-bucket"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	if config.Site != "ABBY" || config.Product != "DP1.00033" {
		t.Errorf("site/product = %s/%s", config.Site, config.Product)
	}
	if config.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", config.BatchSize)
	}
	if config.S3Bucket != "my-bucket" {
		t.Errorf("S3Bucket = %q, want my-bucket", config.S3Bucket)
	}
	// Values the file does not set keep their defaults.
	if config.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", config.TimeoutSeconds)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"batch_size": 25, "log_level": "info"}`), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("PHENOFETCH_BATCH_SIZE", "10")
	t.Setenv("PHENOFETCH_LOG_LEVEL", "debug")
	t.Setenv("PHENOFETCH_SKIP_EXISTING", "false")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	if config.BatchSize != 10 {
		t.Errorf("BatchSize = %d, want 10 from environment", config.BatchSize)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
	if config.SkipExisting {
		t.Error("SkipExisting = true, want false from environment")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/does/not/exist.json"); err == nil {
		t.Error("LoadConfig() expected error for missing config file")
	}
}
