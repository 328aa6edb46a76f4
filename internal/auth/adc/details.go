package adc

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// State represents the credential state (mirrors auth.State to avoid an import cycle).
type State int

const (
	// StateConfigured means credentials are configured.
	StateConfigured State = iota
	// StateMissing means required credentials are missing.
	StateMissing
	// StateInvalid means credentials are found but malformed or invalid.
	StateInvalid
)

// Details describes a Google credentials file.
type Details struct {
	State          State
	Type           string    // "Service Account" | "User Credentials"
	Account        string    // Email address or client ID
	Project        string    // Project ID
	ProjectSource  string    // "file (project_id)" | "env (GOOGLE_CLOUD_PROJECT)" | "gcloud config" | "not set"
	UniverseDomain string    // Usually "googleapis.com"
	Path           string    // Path to the credentials file
	LastAuth       time.Time // File modification time
	ErrorMessage   string    // Error message (only for invalid/missing states)
}

// BuildDetails inspects the credentials file at path, or the ADC file when
// path is empty. Performs local inspection only.
func BuildDetails(path string) *Details {
	found := FindFile(path)
	if found == "" {
		msg := "No credentials found. Set google_credentials or GOOGLE_APPLICATION_CREDENTIALS"
		if path != "" {
			msg = fmt.Sprintf("Credentials file %s does not exist", path)
		}
		return &Details{
			State:        StateMissing,
			Path:         path,
			ErrorMessage: msg,
		}
	}

	file, err := ParseFile(found)
	if err != nil {
		return &Details{
			State:        StateInvalid,
			Path:         found,
			ErrorMessage: fmt.Sprintf("Credentials file invalid: %v", err),
		}
	}

	details := &Details{
		State:          StateConfigured,
		Type:           credentialType(file.Type),
		Account:        accountIdentifier(file),
		UniverseDomain: universeDomain(file.UniverseDomain),
		Path:           found,
		LastAuth:       fileModTime(found),
	}
	details.Project, details.ProjectSource = resolveProject(file)
	return details
}

// credentialType converts the file type to a human-readable string.
func credentialType(fileType string) string {
	if fileType == TypeServiceAccount {
		return "Service Account"
	}
	return "User Credentials"
}

// accountIdentifier prefers an email address, falling back to client ID.
func accountIdentifier(file *File) string {
	switch {
	case file.ClientEmail != "":
		return file.ClientEmail
	case file.Account != "":
		return file.Account
	case file.ClientID != "":
		return "(client ID: " + file.ClientID + ")"
	}
	return ""
}

func universeDomain(domain string) string {
	if domain == "" {
		return "googleapis.com"
	}
	return domain
}

func fileModTime(path string) time.Time {
	if stat, err := os.Stat(path); err == nil {
		return stat.ModTime()
	}
	return time.Time{}
}

// resolveProject determines the project ID.
//
// Priority order:
//  1. quota_project_id
//  2. project_id
//  3. GOOGLE_CLOUD_PROJECT environment variable
//  4. gcloud config (core.project)
func resolveProject(file *File) (project, source string) {
	if file.QuotaProjectID != "" {
		return file.QuotaProjectID, "file (quota_project_id)"
	}
	if file.ProjectID != "" {
		return file.ProjectID, "file (project_id)"
	}
	if envProject := os.Getenv("GOOGLE_CLOUD_PROJECT"); envProject != "" {
		return envProject, "env (GOOGLE_CLOUD_PROJECT)"
	}
	if configProject := ReadConfig("project"); configProject != "" {
		return configProject, "gcloud config"
	}
	return "", "not set"
}

// FormatBrief creates a one-line summary of the credentials.
//
// Example: "Service Account, sync@project.iam.gserviceaccount.com, Project: invoices".
func FormatBrief(details *Details) string {
	parts := []string{details.Type}
	if details.Account != "" {
		parts = append(parts, details.Account)
	}
	if details.Project != "" {
		parts = append(parts, fmt.Sprintf("Project: %s", details.Project))
	} else {
		parts = append(parts, "No project set")
	}
	return strings.Join(parts, ", ")
}
