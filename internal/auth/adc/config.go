package adc

import (
	"os"
	"path/filepath"
	"strings"
)

// ReadConfig reads a value from the [core] section of the active gcloud
// configuration. Returns empty string if config not found or key doesn't exist.
func ReadConfig(key string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	configName := readActiveConfig(home)
	configPath := filepath.Join(home, ".config/gcloud/configurations", "config_"+configName)

	data, err := os.ReadFile(configPath) // #nosec G304 -- Reading well-known gcloud config file
	if err != nil {
		return ""
	}
	return parseINIValue(string(data), "core", key)
}

// readActiveConfig returns the active gcloud configuration name.
// Returns "default" if active_config file doesn't exist.
func readActiveConfig(homeDir string) string {
	data, err := os.ReadFile(filepath.Join(homeDir, ".config/gcloud/active_config")) // #nosec G304 -- Reading well-known gcloud config file
	if err != nil {
		return "default"
	}
	return strings.TrimSpace(string(data))
}

// parseINIValue extracts key from section in INI-style configuration.
func parseINIValue(content, section, key string) string {
	var current string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.Trim(line, "[]")
			continue
		}
		if current != section {
			continue
		}
		if k, v, ok := strings.Cut(line, "="); ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
