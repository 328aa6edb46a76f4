// Package constants provides shared constants used throughout the eccnsync
// codebase: timeouts, remote endpoints, write limits and file permissions.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for a single HTTP request
	DefaultHTTPTimeout = 60 * time.Second

	// TokenTimeout bounds the OAuth token exchange
	TokenTimeout = 30 * time.Second

	// SyncTimeout is the timeout for one job's fetch, merge and write
	SyncTimeout = 10 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 30 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0o755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0o644
)

// Zoho export constants
const (
	// ZohoTokenURL is the default accounts endpoint for token exchange
	ZohoTokenURL = "https://accounts.zoho.com/oauth/v2/token"

	// ZohoAuthScheme prefixes the access token in the Authorization header
	ZohoAuthScheme = "Zoho-oauthtoken"

	// ZohoDefaultScope is requested when the configuration names none
	ZohoDefaultScope = "ZohoAnalytics.data.read"
)

// Google Sheets constants
const (
	// SheetsWriteChunkRows is the number of rows sent per values update
	SheetsWriteChunkRows = 5000

	// SheetsWritesPerMinute keeps writes under the per-user write quota
	SheetsWritesPerMinute = 60

	// SheetsWriteBurst is the token bucket burst size for writes
	SheetsWriteBurst = 5
)

// Path constants
const (
	// DefaultConfigName is the config file name searched in the working and home directories
	DefaultConfigName = "eccnsync"

	// EnvPrefix prefixes environment overrides (ECCNSYNC_DRY_RUN, ...)
	EnvPrefix = "ECCNSYNC"
)

// Format constants
const (
	// TimeFormatLog is the format used in log files
	TimeFormatLog = "2006-01-02 15:04:05.000"

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
