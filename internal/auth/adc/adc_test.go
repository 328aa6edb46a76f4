package adc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseINIValue(t *testing.T) {
	content := `[core]
account = someone@example.com
project = invoices

[compute]
region = europe-west1
`
	assert.Equal(t, "invoices", parseINIValue(content, "core", "project"))
	assert.Equal(t, "europe-west1", parseINIValue(content, "compute", "region"))
	assert.Equal(t, "", parseINIValue(content, "core", "region"))
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	t.Run("explicit", func(t *testing.T) {
		assert.Equal(t, path, FindFile(path))
		assert.Equal(t, "", FindFile(filepath.Join(dir, "missing.json")))
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
		assert.Equal(t, path, FindFile(""))
	})
}

func TestBuildDetails(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "from-env")
	path := filepath.Join(t.TempDir(), "adc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"authorized_user","client_id":"123"}`), 0o600))

	details := BuildDetails(path)
	assert.Equal(t, StateConfigured, details.State)
	assert.Equal(t, "User Credentials", details.Type)
	assert.Equal(t, "(client ID: 123)", details.Account)
	assert.Equal(t, "from-env", details.Project)
	assert.Equal(t, "env (GOOGLE_CLOUD_PROJECT)", details.ProjectSource)
	assert.Equal(t, "googleapis.com", details.UniverseDomain)
	assert.False(t, details.LastAuth.IsZero())
	assert.Equal(t, "User Credentials, (client ID: 123), Project: from-env", FormatBrief(details))
}

func TestParseFileErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	_, err := ParseFile(write("notype.json", `{}`))
	assert.ErrorContains(t, err, "missing 'type'")

	_, err = ParseFile(write("unknown.json", `{"type":"external_account"}`))
	assert.ErrorContains(t, err, "unknown type")

	_, err = ParseFile(filepath.Join(dir, "absent.json"))
	assert.ErrorContains(t, err, "cannot read file")
}
