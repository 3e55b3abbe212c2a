// file: internal/config/persistence.go
// version: 1.0.0
// guid: 8e3f6071-92a3-b4c5-d6e7-f80910213243

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// credentialsFile mirrors the on-disk YAML credentials fallback.
type credentialsFile struct {
	ExchangeEndpoint string `yaml:"exchange_endpoint,omitempty"`
	ClientID         string `yaml:"client_id,omitempty"`
	ClientSecret     string `yaml:"client_secret,omitempty"`
}

// CredentialsFilePath returns the path to the YAML credentials file next to
// the active config file, or in the working directory when viper loaded no
// config file.
func CredentialsFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return filepath.Join(filepath.Dir(used), "credentials.yaml")
	}
	return "credentials.yaml"
}

// LoadCredentialsFromFile fills in credential values that the main config
// left empty. Environment and config-file values always win; the file only
// plugs gaps so a bare deployment can ship credentials separately.
func LoadCredentialsFromFile() error {
	path := CredentialsFilePath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds credentialsFile
	if err := yaml.Unmarshal(data, &creds); err != nil {
		log.Printf("[WARN] failed to parse credentials file %s: %v", path, err)
		return nil
	}

	applied := 0
	if AppConfig.ExchangeEndpoint == "" && creds.ExchangeEndpoint != "" {
		AppConfig.ExchangeEndpoint = creds.ExchangeEndpoint
		applied++
	}
	if AppConfig.ClientID == "" && creds.ClientID != "" {
		AppConfig.ClientID = creds.ClientID
		applied++
	}
	if AppConfig.ClientSecret == "" && creds.ClientSecret != "" {
		AppConfig.ClientSecret = creds.ClientSecret
		applied++
	}

	if applied > 0 {
		log.Printf("[DEBUG] applied %d credential values from %s", applied, path)
	}
	return nil
}

// SaveCredentialsToFile writes the current credentials to the fallback file
// with owner-only permissions.
func SaveCredentialsToFile() error {
	path := CredentialsFilePath()

	data, err := yaml.Marshal(credentialsFile{
		ExchangeEndpoint: AppConfig.ExchangeEndpoint,
		ClientID:         AppConfig.ClientID,
		ClientSecret:     AppConfig.ClientSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}
