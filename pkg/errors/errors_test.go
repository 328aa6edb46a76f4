package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/eccnsync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestConfigError(t *testing.T) {
	t.Run("with component", func(t *testing.T) {
		err := pkgerrors.NewConfigError("schema", "key column Subform_id missing from destination", nil)
		assert.Equal(t, "configuration error in schema: key column Subform_id missing from destination", err.Error())
		assert.True(t, pkgerrors.IsConfig(err))
		assert.False(t, pkgerrors.IsFetch(err))
	})

	t.Run("without component", func(t *testing.T) {
		err := &pkgerrors.ConfigError{Message: "no jobs configured"}
		assert.Equal(t, "configuration error: no jobs configured", err.Error())
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("reconcile: %w", pkgerrors.NewConfigError("schema", "bad", nil))
		assert.True(t, pkgerrors.IsConfig(err))
		assert.False(t, pkgerrors.Retryable(err))
	})
}

func TestAuthError(t *testing.T) {
	base := errors.New("invalid_client")
	err := &pkgerrors.AuthError{
		Provider:   "zoho",
		Method:     "refresh_token",
		StatusCode: 401,
		Err:        base,
	}
	assert.Contains(t, err.Error(), "zoho")
	assert.Contains(t, err.Error(), "refresh_token")
	assert.Contains(t, err.Error(), "invalid_client")
	assert.True(t, pkgerrors.IsAuth(err))
	assert.Equal(t, base, err.Unwrap())
}

func TestFetchError(t *testing.T) {
	tests := []struct {
		name     string
		err      *pkgerrors.FetchError
		contains string
	}{
		{
			name:     "status code",
			err:      pkgerrors.NewFetchError("zoho", 500, "internal error", nil),
			contains: "status 500",
		},
		{
			name:     "remote code",
			err:      &pkgerrors.FetchError{Source: "zoho", Code: "7103", Message: "view not found"},
			contains: "code 7103",
		},
		{
			name:     "plain",
			err:      &pkgerrors.FetchError{Source: "zoho", Err: errors.New("unexpected EOF")},
			contains: "unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.contains)
			assert.True(t, pkgerrors.IsFetch(tt.err))
		})
	}
}

func TestAccessError(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := &pkgerrors.AccessError{Resource: "spreadsheet", ID: "abc", StatusCode: 404, Message: "missing"}
		assert.True(t, pkgerrors.IsAccess(err))
		assert.True(t, pkgerrors.IsNotFound(err))
		assert.Equal(t, "cannot access spreadsheet abc: missing", err.Error())
	})

	t.Run("forbidden", func(t *testing.T) {
		err := &pkgerrors.AccessError{Resource: "spreadsheet", StatusCode: 403, Message: "denied"}
		assert.True(t, pkgerrors.IsAccess(err))
		assert.False(t, pkgerrors.IsNotFound(err))
	})
}

func TestWriteError(t *testing.T) {
	err := pkgerrors.NewWriteError("worksheet MCM_3", "write", errors.New("payload too large"))
	err.Cleared = true
	assert.True(t, pkgerrors.IsWrite(err))
	assert.Contains(t, err.Error(), "write of worksheet MCM_3 rejected")
	assert.Contains(t, err.Error(), "destination was cleared")
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited fetch", pkgerrors.NewFetchError("zoho", 429, "slow down", nil), true},
		{"server error write", &pkgerrors.WriteError{Resource: "sheet", Operation: "write", StatusCode: 503}, true},
		{"bad request write", &pkgerrors.WriteError{Resource: "sheet", Operation: "write", StatusCode: 400}, false},
		{"auth rejected", &pkgerrors.AuthError{Provider: "zoho", StatusCode: 401}, false},
		{"config", pkgerrors.NewConfigError("job", "missing", nil), false},
		{"timeout", fmt.Errorf("fetch: %w", pkgerrors.ErrTimeout), true},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pkgerrors.Retryable(tt.err))
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := pkgerrors.NewConfigError("jobs", "unknown job", pkgerrors.NewNotFoundError("job", "nope"))
	assert.True(t, pkgerrors.IsConfig(err))
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.False(t, pkgerrors.Retryable(err))
	assert.Equal(t, "job nope not found", err.Err.Error())
}

func TestIOError(t *testing.T) {
	t.Run("wrap helper", func(t *testing.T) {
		baseErr := errors.New("permission denied")
		err := pkgerrors.WrapIO("open", "/data/sheet.csv", baseErr)
		var ioErr *pkgerrors.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "open", ioErr.Operation)
		assert.Equal(t, "/data/sheet.csv", ioErr.Path)
		assert.Equal(t, baseErr, ioErr.Unwrap())
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	})
}

func TestParseError(t *testing.T) {
	err := pkgerrors.NewParseError("xml", "export.xml", "unexpected EOF", nil)
	assert.Equal(t, "parse error in xml file export.xml: unexpected EOF", err.Error())

	err.Line = 12
	assert.Equal(t, "parse error in xml at export.xml:12: unexpected EOF", err.Error())
}
