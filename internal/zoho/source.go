package zoho

import (
	"bytes"
	"context"
	"net/http"

	"github.com/agentstation/eccnsync/internal/transport"
	"github.com/agentstation/eccnsync/pkg/constants"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/logging"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/sources"
)

// Source fetches one export view.
type Source struct {
	exportURL string
	client    *transport.Client
}

// Option configures a Source.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient uses hc for both the token exchange and the export call.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// NewSource creates a Source for exportURL authenticated with creds.
func NewSource(ctx context.Context, creds Credentials, exportURL string, opts ...Option) (*Source, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if exportURL == "" {
		return nil, errors.NewConfigError("zoho", "export URL is empty", nil)
	}

	ts, err := TokenSource(ctx, creds, o.httpClient)
	if err != nil {
		return nil, err
	}

	client := transport.New(
		&transport.SchemeAuth{Scheme: constants.ZohoAuthScheme},
		transport.WithTokenSource("zoho", ts),
		transport.WithHTTPClient(o.httpClient),
	)
	return &Source{exportURL: exportURL, client: client}, nil
}

// ID returns sources.ZohoID.
func (s *Source) ID() sources.ID {
	return sources.ZohoID
}

// Fetch downloads and parses the export.
func (s *Source) Fetch(ctx context.Context) (records.RecordSet, error) {
	logger := logging.FromContext(ctx)

	resp, err := s.client.Get(ctx, s.exportURL)
	if err != nil {
		if errors.IsAuth(err) {
			return records.RecordSet{}, err
		}
		return records.RecordSet{}, errors.NewFetchError("zoho", 0, "export request failed", err)
	}

	body, err := transport.ReadBody(resp, "zoho")
	if err != nil {
		return records.RecordSet{}, err
	}

	set, err := ParseExport(bytes.NewReader(body))
	if err != nil {
		return records.RecordSet{}, err
	}

	logger.Info().
		Int("rows", set.Len()).
		Int("columns", len(set.Columns)).
		Msg("Fetched export")
	return set, nil
}
