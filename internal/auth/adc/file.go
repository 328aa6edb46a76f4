// Package adc inspects Google credential files: service account keys and
// Application Default Credentials.
package adc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TypeAuthorizedUser represents user credentials from gcloud auth.
	TypeAuthorizedUser = "authorized_user"
	// TypeServiceAccount represents service account credentials.
	TypeServiceAccount = "service_account"
)

// File represents a Google credentials JSON file.
type File struct {
	Type           string `json:"type"`
	QuotaProjectID string `json:"quota_project_id"`
	ProjectID      string `json:"project_id"`
	Account        string `json:"account"`
	ClientEmail    string `json:"client_email"`
	ClientID       string `json:"client_id"`
	UniverseDomain string `json:"universe_domain"`
}

// FindFile locates a credentials file. An explicit path wins when it
// exists; otherwise Google's standard search order applies:
//  1. GOOGLE_APPLICATION_CREDENTIALS environment variable
//  2. ~/.config/gcloud/application_default_credentials.json
//
// Returns empty string if not found.
func FindFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	defaultPath := filepath.Join(home, ".config/gcloud/application_default_credentials.json")
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}
	return ""
}

// ParseFile reads and validates a credentials JSON file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- Reading configured credential file
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if file.Type == "" {
		return nil, fmt.Errorf("missing 'type' field")
	}
	if file.Type != TypeAuthorizedUser && file.Type != TypeServiceAccount {
		return nil, fmt.Errorf("unknown type: %s", file.Type)
	}
	if file.Type == TypeServiceAccount && file.ClientEmail == "" {
		return nil, fmt.Errorf("service account without client_email")
	}

	return &file, nil
}
