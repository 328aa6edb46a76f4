package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eccnsync/internal/config"
	"github.com/agentstation/eccnsync/internal/zoho"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service-account.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCheckZoho(t *testing.T) {
	checker := NewChecker()

	tests := []struct {
		name  string
		creds zoho.Credentials
		want  State
	}{
		{"missing", zoho.Credentials{}, StateMissing},
		{"no refresh token", zoho.Credentials{ClientID: "1000.ABCDEFGHIJKL", ClientSecret: "s"}, StateInvalid},
		{"refresh grant", zoho.Credentials{ClientID: "1000.ABCDEFGHIJKL", ClientSecret: "s", RefreshToken: "r"}, StateConfigured},
		{"bad grant", zoho.Credentials{ClientID: "id", ClientSecret: "s", GrantType: "password"}, StateInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := checker.CheckZoho(tt.creds)
			assert.Equal(t, ServiceZoho, status.Service)
			assert.Equal(t, tt.want, status.State, status.Summary)
			assert.NotEqual(t, tt.creds.ClientSecret, status.Account)
		})
	}
}

func TestCheckGoogle(t *testing.T) {
	checker := NewChecker()

	t.Run("service account", func(t *testing.T) {
		path := writeFile(t, `{"type":"service_account","project_id":"invoices","client_email":"sync@invoices.iam.gserviceaccount.com"}`)
		status := checker.CheckGoogle(path)
		assert.Equal(t, StateConfigured, status.State)
		assert.Equal(t, "sync@invoices.iam.gserviceaccount.com", status.Account)
		assert.Contains(t, status.Summary, "Project: invoices")
		assert.Equal(t, path, status.Source)
	})

	t.Run("missing file", func(t *testing.T) {
		status := checker.CheckGoogle(filepath.Join(t.TempDir(), "nope.json"))
		assert.Equal(t, StateMissing, status.State)
		assert.Contains(t, status.Summary, "does not exist")
	})

	t.Run("malformed file", func(t *testing.T) {
		status := checker.CheckGoogle(writeFile(t, `{"type":`))
		assert.Equal(t, StateInvalid, status.State)
	})

	t.Run("service account without email", func(t *testing.T) {
		status := checker.CheckGoogle(writeFile(t, `{"type":"service_account"}`))
		assert.Equal(t, StateInvalid, status.State)
	})
}

func TestCheck(t *testing.T) {
	statuses := NewChecker().Check(config.Credentials{})
	require.Len(t, statuses, 2)
	assert.Equal(t, ServiceZoho, statuses[0].Service)
	assert.Equal(t, ServiceGoogle, statuses[1].Service)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "*****", MaskSecret("short"))
	assert.Equal(t, "1000.ABC************WXYZ", MaskSecret("1000.ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Configured", StateConfigured.String())
	assert.Equal(t, "Missing", StateMissing.String())
	assert.Equal(t, "Invalid", StateInvalid.String())
	assert.Equal(t, "Unknown", State(42).String())
}
