// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format           string `yaml:"format"`
		ConfidenceLevels string `yaml:"confidence_levels"`
		Verbose          bool   `yaml:"verbose"`
		Debug            bool   `yaml:"debug"`
		NoColor          bool   `yaml:"no_color"`
		Recursive        bool   `yaml:"recursive"`
	} `yaml:"defaults"`

	// Extraction engine configuration
	Extraction struct {
		ContextChars     int      `yaml:"context_chars"`
		CurrencyPriority []string `yaml:"currency_priority"`
		TextExtraction   struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"text_extraction"`
	} `yaml:"extraction"`

	// Result storage configuration
	Storage struct {
		Enabled  bool   `yaml:"enabled"`
		Dir      string `yaml:"dir"`
		KeepPDFs bool   `yaml:"keep_pdfs"`
	} `yaml:"storage"`

	// Web server configuration
	Web struct {
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		MaxUploadMB int    `yaml:"max_upload_mb"`
	} `yaml:"web"`

	// Profiles for different processing scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a processing profile with specific settings
type Profile struct {
	Format           string `yaml:"format"`
	ConfidenceLevels string `yaml:"confidence_levels"`
	Verbose          bool   `yaml:"verbose"`
	Debug            bool   `yaml:"debug"`
	NoColor          bool   `yaml:"no_color"`
	Recursive        bool   `yaml:"recursive"`
	Description      string `yaml:"description"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	// Default configuration
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.ConfidenceLevels = "all"
	config.Defaults.Verbose = false
	config.Defaults.Debug = false
	config.Defaults.NoColor = false
	config.Defaults.Recursive = false

	config.Extraction.ContextChars = 50
	config.Extraction.CurrencyPriority = []string{"AUD", "USD", "GBP", "EUR", "JPY", "CNY"}
	config.Extraction.TextExtraction.Enabled = true

	config.Storage.Enabled = false
	config.Storage.Dir = "./cai-data"
	config.Storage.KeepPDFs = true

	config.Web.Host = "127.0.0.1"
	config.Web.Port = 8080
	config.Web.MaxUploadMB = 32

	// Add default batch profile for unattended directory runs
	config.Profiles["batch"] = Profile{
		Format:           "json",
		ConfidenceLevels: "all",
		Verbose:          false,
		Debug:            false,
		NoColor:          true,
		Recursive:        true,
		Description:      "Optimized for unattended batch runs with machine-readable output",
	}

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	// Read config file
	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Store default values before unmarshaling
	defaultTextExtractionEnabled := config.Extraction.TextExtraction.Enabled
	defaultKeepPDFs := config.Storage.KeepPDFs

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Restore defaults if not explicitly set in config file
	// This handles the case where YAML unmarshaling sets bool fields to false
	// when they're not present in the config file
	if !containsField(data, "extraction", "text_extraction", "enabled") {
		config.Extraction.TextExtraction.Enabled = defaultTextExtractionEnabled
	}
	if !containsField(data, "storage", "keep_pdfs") {
		config.Storage.KeepPDFs = defaultKeepPDFs
	}

	// Validate the configuration
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Check current directory first - prioritize config.yaml
	if fileExists("config.yaml") {
		return "config.yaml"
	}
	if fileExists("cai-scan.yaml") {
		return "cai-scan.yaml"
	}
	if fileExists("cai-scan.yml") {
		return "cai-scan.yml"
	}

	// Check for .cai-scan.yaml in current directory (project-specific config)
	if fileExists(".cai-scan.yaml") {
		return ".cai-scan.yaml"
	}
	if fileExists(".cai-scan.yml") {
		return ".cai-scan.yml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	// Check legacy location in home directory
	homeConfig := filepath.Join(home, ".cai-scan.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}

	// Check XDG config directory
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgConfigFile := filepath.Join(xdgConfig, "cai-scan", "config.yaml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}
	xdgConfigFile = filepath.Join(xdgConfig, "cai-scan", "config.yml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns a list of available profile names
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			// Last key - check if it exists
			_, exists := current[key]
			return exists
		}
		// Intermediate key - navigate deeper
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if config.Extraction.ContextChars < 0 {
		return fmt.Errorf("extraction.context_chars cannot be negative")
	}
	if config.Web.Port < 0 || config.Web.Port > 65535 {
		return fmt.Errorf("web.port must be between 0 and 65535")
	}
	if config.Web.MaxUploadMB <= 0 {
		return fmt.Errorf("web.max_upload_mb must be positive")
	}
	for _, code := range config.Extraction.CurrencyPriority {
		if !isCurrencyCode(code) {
			return fmt.Errorf("extraction.currency_priority entry %q is not a 3-letter code", code)
		}
	}

	return nil
}

// isCurrencyCode reports whether code is exactly three ASCII letters. Codes
// are interpolated into extraction patterns, so anything else is rejected.
func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
// This is the shared helper used by both the CLI and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults — callers should not crash on a missing/bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}
