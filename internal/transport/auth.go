package transport

import (
	"net/http"
)

// Authenticator applies an access token to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {
	// No authentication applied
}

// SchemeAuth sets the Authorization header with a custom scheme, e.g.
// "Zoho-oauthtoken <token>".
type SchemeAuth struct {
	Scheme string
}

// Apply implements the Authenticator interface for SchemeAuth.
func (a *SchemeAuth) Apply(req *http.Request, token string) {
	if a.Scheme == "" {
		req.Header.Set("Authorization", token)
		return
	}
	req.Header.Set("Authorization", a.Scheme+" "+token)
}
