package transport

import (
	"net/http"
	"testing"
)

// TestNoAuth tests that NoAuth applies no authentication.
func TestNoAuth(t *testing.T) {
	auth := &NoAuth{}
	req := &http.Request{
		Header: make(http.Header),
	}

	auth.Apply(req, "test-token")

	// Should not have any authentication headers
	if len(req.Header) != 0 {
		t.Errorf("Expected no headers, got %d", len(req.Header))
	}
}

// TestSchemeAuth tests custom Authorization schemes.
func TestSchemeAuth(t *testing.T) {
	tests := []struct {
		name     string
		scheme   string
		expected string
	}{
		{"zoho", "Zoho-oauthtoken", "Zoho-oauthtoken test-token"},
		{"bearer", "Bearer", "Bearer test-token"},
		{"no scheme", "", "test-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{Header: make(http.Header)}
			(&SchemeAuth{Scheme: tt.scheme}).Apply(req, "test-token")
			if got := req.Header.Get("Authorization"); got != tt.expected {
				t.Errorf("Expected Authorization header '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

// TestSchemeAuthReplacesHeader tests that a retried request carries one token.
func TestSchemeAuthReplacesHeader(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	auth := &SchemeAuth{Scheme: "Zoho-oauthtoken"}

	auth.Apply(req, "stale")
	auth.Apply(req, "fresh")

	if got := req.Header.Values("Authorization"); len(got) != 1 || got[0] != "Zoho-oauthtoken fresh" {
		t.Errorf("Expected a single fresh Authorization header, got %v", got)
	}
}
