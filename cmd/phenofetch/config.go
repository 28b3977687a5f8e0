package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CLIConfig holds settings shared by the estimate and download commands.
// Precedence is defaults, then config file, then environment, then flags.
type CLIConfig struct {
	Site           string `json:"site,omitempty"`
	Product        string `json:"product,omitempty"`
	OutputDir      string `json:"output_dir"`
	Workers        int    `json:"workers,omitempty"`
	BatchSize      int    `json:"batch_size"`
	TimeoutSeconds int    `json:"timeout"`
	FileTypes      string `json:"file_types"`
	LogLevel       string `json:"log_level"`
	SkipExisting   bool   `json:"skip_existing"`
	S3Bucket       string `json:"s3_bucket,omitempty"`
	S3Region       string `json:"s3_region,omitempty"`
	S3Prefix       string `json:"s3_prefix,omitempty"`
}

// LoadConfig loads configuration from an optional JSON file and the
// environment. Workers stays zero unless set, meaning auto-sized.
func LoadConfig(configFile string) (*CLIConfig, error) {
	config := &CLIConfig{
		OutputDir:      "phenocam_data",
		BatchSize:      50,
		TimeoutSeconds: 30,
		FileTypes:      "all",
		LogLevel:       "info",
		SkipExisting:   true,
		S3Region:       "us-east-1",
	}

	if configFile != "" {
		if err := loadConfigFile(config, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
	}

	loadConfigFromEnv(config)

	return config, nil
}

func loadConfigFile(config *CLIConfig, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

func loadConfigFromEnv(config *CLIConfig) {
	if val := os.Getenv("PHENOFETCH_SITE"); val != "" {
		config.Site = val
	}

	if val := os.Getenv("PHENOFETCH_PRODUCT"); val != "" {
		config.Product = val
	}

	if val := os.Getenv("PHENOFETCH_OUTPUT_DIR"); val != "" {
		config.OutputDir = val
	}

	if val := os.Getenv("PHENOFETCH_WORKERS"); val != "" {
		if workers, err := strconv.Atoi(val); err == nil {
			config.Workers = workers
		}
	}

	if val := os.Getenv("PHENOFETCH_BATCH_SIZE"); val != "" {
		if batchSize, err := strconv.Atoi(val); err == nil {
			config.BatchSize = batchSize
		}
	}

	if val := os.Getenv("PHENOFETCH_TIMEOUT"); val != "" {
		if timeout, err := strconv.Atoi(val); err == nil {
			config.TimeoutSeconds = timeout
		}
	}

	if val := os.Getenv("PHENOFETCH_FILE_TYPES"); val != "" {
		config.FileTypes = val
	}

	if val := os.Getenv("PHENOFETCH_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	if val := os.Getenv("PHENOFETCH_SKIP_EXISTING"); val != "" {
		config.SkipExisting = strings.ToLower(val) == "true"
	}

	if val := os.Getenv("PHENOFETCH_S3_BUCKET"); val != "" {
		config.S3Bucket = val
	}

	if val := os.Getenv("PHENOFETCH_S3_REGION"); val != "" {
		config.S3Region = val
	}

	if val := os.Getenv("PHENOFETCH_S3_PREFIX"); val != "" {
		config.S3Prefix = val
	}
}
