package transport

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/agentstation/eccnsync/pkg/constants"
	"github.com/agentstation/eccnsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http     *http.Client
	auth     Authenticator
	tokens   oauth2.TokenSource
	provider string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets the source of access tokens applied by the
// authenticator. provider names the identity provider in AuthErrors.
func WithTokenSource(provider string, ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.provider = provider
		c.tokens = ts
	}
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http: &http.Client{Timeout: DefaultHTTPTimeout},
		auth: auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an HTTP request with authentication applied and context support.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, authError(c.provider, err)
		}
		c.auth.Apply(req, tok.AccessToken)
	}

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/xml, text/xml, */*")
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL, errors.ErrTimeout, err)
		}
		return nil, errors.WrapIO(req.Method, req.URL.String(), err)
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewValidationError("url", url, err.Error())
	}
	return c.Do(ctx, req)
}

// authError converts a token failure into an AuthError, keeping the
// provider's HTTP status when the exchange itself was rejected.
func authError(provider string, err error) error {
	authErr := &errors.AuthError{
		Provider: provider,
		Method:   "oauth2",
		Message:  "failed to obtain access token",
		Err:      err,
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		authErr.StatusCode = retrieveErr.Response.StatusCode
	}
	return authErr
}
