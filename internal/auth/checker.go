package auth

import (
	"fmt"
	"strings"

	"github.com/agentstation/eccnsync/internal/auth/adc"
	"github.com/agentstation/eccnsync/internal/config"
	"github.com/agentstation/eccnsync/internal/zoho"
)

// Service names reported by the checker.
const (
	ServiceZoho   = "zoho"
	ServiceGoogle = "google"
)

// Check returns the status of every service a live sync talks to.
func (c *Checker) Check(creds config.Credentials) []*Status {
	return []*Status{
		c.CheckZoho(creds.Zoho),
		c.CheckGoogle(creds.GoogleCredentialsFile),
	}
}

// CheckZoho checks the OAuth client used for the analytics export.
func (c *Checker) CheckZoho(creds zoho.Credentials) *Status {
	status := &Status{
		Service: ServiceZoho,
		Account: MaskSecret(creds.ClientID),
		Source:  creds.Grant(),
	}
	if creds.ClientID == "" && creds.ClientSecret == "" && creds.RefreshToken == "" {
		status.State = StateMissing
		status.Summary = "Set ZOHO_CLIENT_ID, ZOHO_CLIENT_SECRET and ZOHO_REFRESH_TOKEN or a credentials file"
		status.Account = ""
		return status
	}
	if err := creds.Validate(); err != nil {
		status.State = StateInvalid
		status.Summary = err.Error()
		return status
	}
	status.State = StateConfigured
	status.Summary = fmt.Sprintf("OAuth client configured (%s grant)", creds.Grant())
	return status
}

// CheckGoogle checks the service account used for Sheets and Drive. An
// empty path falls back to Application Default Credentials.
func (c *Checker) CheckGoogle(path string) *Status {
	details := adc.BuildDetails(path)

	status := &Status{
		Service: ServiceGoogle,
		Account: details.Account,
		Source:  details.Path,
	}
	switch details.State {
	case adc.StateConfigured:
		status.State = StateConfigured
		status.Summary = adc.FormatBrief(details)
	case adc.StateMissing:
		status.State = StateMissing
		status.Summary = details.ErrorMessage
	default:
		status.State = StateInvalid
		status.Summary = details.ErrorMessage
	}
	return status
}

// MaskSecret masks a credential for display, showing only the first 8 and
// last 4 characters.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:8] + strings.Repeat("*", 12) + secret[len(secret)-4:]
}
