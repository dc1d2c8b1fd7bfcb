package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "genlink"
	configFileName = "config.json"
)

// UserConfig represents the user's local configuration stored in
// ~/.config/genlink/config.json
type UserConfig struct {
	APIURL      string `json:"api_url,omitempty"`
	DefaultCity string `json:"default_city,omitempty"`
}

// GetConfigPath returns the path to the user config file.
// GENLINK_CONFIG_DIR overrides the directory (used by tests and CI).
func GetConfigPath() (string, error) {
	if dir := os.Getenv("GENLINK_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetAPIURL updates the API base URL and saves the config
func SetAPIURL(url string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.APIURL = url
	return Save(cfg)
}
