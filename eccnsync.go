// Package eccnsync keeps a shared spreadsheet of invoice lines in step with
// an analytics export. Each job fetches the export, reads the worksheet,
// reconciles the two by key, sorts the result and replaces the worksheet
// content in full.
//
// Destination-only rows and values the export leaves empty (compliance
// codes typed into the sheet by hand, for example) survive every run.
//
// Example usage:
//
//	cfg, err := config.Load(config.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	catalog, err := cfg.Catalog()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := eccnsync.New(eccnsync.WithCredentials(cfg.Credentials))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnRowAdded(func(job, key string, rec records.Record) {
//	    log.Printf("%s: new row %s", job, key)
//	})
//
//	job, _ := catalog.Get("mcm")
//	report, err := client.Sync(ctx, job, eccnsync.WithDryRun(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Changeset)
package eccnsync

import (
	"context"
	"net/http"

	"google.golang.org/api/option"

	"github.com/agentstation/eccnsync/internal/config"
	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/internal/sheets"
	"github.com/agentstation/eccnsync/internal/zoho"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/sources"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client runs reconciliation jobs and notifies hooks about what they changed.
type Client interface {
	// Syncer runs jobs end to end
	Syncer

	// Hooks provides access to event callback registration
	Hooks
}

// Syncer runs reconciliation jobs.
type Syncer interface {
	// Sync runs one job: fetch, read, reconcile, sort, write back.
	Sync(ctx context.Context, job jobs.Job, opts ...SyncOption) (*Report, error)

	// SyncAll runs jobs one after another. Every job is attempted; the
	// first error is returned alongside all reports.
	SyncAll(ctx context.Context, list []jobs.Job, opts ...SyncOption) ([]*Report, error)
}

// SourceFactory builds the Source for a job.
type SourceFactory func(ctx context.Context, job jobs.Job) (sources.Source, error)

// DestinationFactory builds the Destination for a job.
type DestinationFactory func(ctx context.Context, job jobs.Job) (sources.Destination, error)

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	hooks   *hooks
}

// New creates a Client. Without factories the client talks to the analytics
// export and Google Sheets using the configured credentials.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	c := &client{options: o, hooks: newHooks()}
	if o.sourceFactory == nil {
		o.sourceFactory = c.zohoSource
	}
	if o.destinationFactory == nil {
		o.destinationFactory = c.sheetsDestination
	}
	return c, nil
}

func (c *client) zohoSource(ctx context.Context, job jobs.Job) (sources.Source, error) {
	var zopts []zoho.Option
	if c.options.httpClient != nil {
		zopts = append(zopts, zoho.WithHTTPClient(c.options.httpClient))
	}
	return zoho.NewSource(ctx, c.options.credentials.Zoho, job.ExportURL, zopts...)
}

func (c *client) sheetsDestination(ctx context.Context, job jobs.Job) (sources.Destination, error) {
	gopts := c.options.googleOptions
	if len(gopts) == 0 {
		if c.options.credentials.GoogleCredentialsFile == "" {
			return nil, errors.NewConfigError("sheets", "no google service account file configured", nil)
		}
		gopts = []option.ClientOption{option.WithCredentialsFile(c.options.credentials.GoogleCredentialsFile)}
	}
	return sheets.New(ctx, job.Sheet, gopts...)
}

// Option is a function that configures a Client.
type Option func(*options) error

type options struct {
	credentials        config.Credentials
	httpClient         *http.Client
	googleOptions      []option.ClientOption
	sourceFactory      SourceFactory
	destinationFactory DestinationFactory
}

func defaults() *options {
	return &options{}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithCredentials sets the credentials handed to the default adapters.
func WithCredentials(creds config.Credentials) Option {
	return func(o *options) error {
		o.credentials = creds
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for the export and its token exchange.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return &errors.ValidationError{Field: "http_client", Message: "cannot be nil"}
		}
		o.httpClient = hc
		return nil
	}
}

// WithGoogleOptions replaces the client options of the Sheets destination,
// e.g. option.WithCredentialsJSON or option.WithEndpoint.
func WithGoogleOptions(opts ...option.ClientOption) Option {
	return func(o *options) error {
		o.googleOptions = opts
		return nil
	}
}

// WithSourceFactory replaces the default export source.
func WithSourceFactory(f SourceFactory) Option {
	return func(o *options) error {
		if f == nil {
			return &errors.ValidationError{Field: "source_factory", Message: "cannot be nil"}
		}
		o.sourceFactory = f
		return nil
	}
}

// WithDestinationFactory replaces the default spreadsheet destination.
func WithDestinationFactory(f DestinationFactory) Option {
	return func(o *options) error {
		if f == nil {
			return &errors.ValidationError{Field: "destination_factory", Message: "cannot be nil"}
		}
		o.destinationFactory = f
		return nil
	}
}
