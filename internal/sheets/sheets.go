// Package sheets implements the Google Sheets destination: one worksheet of
// one spreadsheet, read as a header row plus data rows and replaced in full
// on every successful run.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/agentstation/eccnsync/pkg/constants"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/logging"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/sources"
)

const spreadsheetMime = "application/vnd.google-apps.spreadsheet"

// Config identifies the worksheet and tunes writes.
type Config struct {
	// SpreadsheetID takes precedence over SpreadsheetTitle.
	SpreadsheetID string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id,omitempty" json:"spreadsheet_id,omitempty"`
	// SpreadsheetTitle is looked up through Drive when no ID is given.
	SpreadsheetTitle string `mapstructure:"spreadsheet" yaml:"spreadsheet,omitempty" json:"spreadsheet,omitempty"`
	Worksheet        string `mapstructure:"worksheet" yaml:"worksheet" json:"worksheet"`
	CreateIfMissing  bool   `mapstructure:"create_if_missing" yaml:"create_if_missing,omitempty" json:"create_if_missing,omitempty"`
	ChunkRows        int    `mapstructure:"chunk_rows" yaml:"chunk_rows,omitempty" json:"chunk_rows,omitempty"`
	WritesPerMinute  int    `mapstructure:"writes_per_minute" yaml:"writes_per_minute,omitempty" json:"writes_per_minute,omitempty"`
}

// Validate reports an unusable configuration as a ConfigError.
func (c Config) Validate() error {
	if c.SpreadsheetID == "" && c.SpreadsheetTitle == "" {
		return errors.NewConfigError("sheets", "spreadsheet id or title is required", nil)
	}
	if c.Worksheet == "" {
		return errors.NewConfigError("sheets", "worksheet is required", nil)
	}
	return nil
}

// Destination is a sources.Destination backed by a worksheet.
type Destination struct {
	cfg     Config
	sheets  *sheets.Service
	drive   *drive.Service
	limiter *rate.Limiter

	mu            sync.Mutex
	spreadsheetID string
}

// New creates a Destination. opts are passed to both the Sheets and Drive
// clients, e.g. option.WithCredentialsFile.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Destination, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ChunkRows <= 0 {
		cfg.ChunkRows = constants.SheetsWriteChunkRows
	}
	if cfg.WritesPerMinute <= 0 {
		cfg.WritesPerMinute = constants.SheetsWritesPerMinute
	}

	opts = append([]option.ClientOption{
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope),
	}, opts...)

	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError("sheets", "creating sheets client", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError("sheets", "creating drive client", err)
	}

	return &Destination{
		cfg:           cfg,
		sheets:        sheetsSvc,
		drive:         driveSvc,
		limiter:       rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.WritesPerMinute)), constants.SheetsWriteBurst),
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

// ID returns sources.SheetsID.
func (d *Destination) ID() sources.ID {
	return sources.SheetsID
}

// Read returns the worksheet content. A worksheet that does not exist is
// created when configured and reads as an empty set.
func (d *Destination) Read(ctx context.Context) (records.RecordSet, error) {
	logger := logging.FromContext(ctx)

	id, err := d.resolve(ctx)
	if err != nil {
		return records.RecordSet{}, err
	}
	created, err := d.ensureWorksheet(ctx, id)
	if err != nil {
		return records.RecordSet{}, err
	}
	if created {
		return records.RecordSet{}, nil
	}

	resp, err := d.sheets.Spreadsheets.Values.Get(id, d.sheetRange()).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return records.RecordSet{}, d.accessError(err)
	}

	rows := toStrings(resp.Values)
	if len(rows) == 0 || len(rows[0]) == 0 {
		logger.Info().Str("worksheet", d.cfg.Worksheet).Msg("Worksheet is empty")
		return records.RecordSet{}, nil
	}
	set := records.FromRows(rows[0], rows[1:])
	logger.Info().
		Str("worksheet", d.cfg.Worksheet).
		Int("rows", set.Len()).
		Msg("Read worksheet")
	return set, nil
}

// Clear removes every value from the worksheet.
func (d *Destination) Clear(ctx context.Context) error {
	id, err := d.resolve(ctx)
	if err != nil {
		return err
	}
	if _, err := d.ensureWorksheet(ctx, id); err != nil {
		return err
	}
	_, err = d.sheets.Spreadsheets.Values.Clear(id, d.sheetRange(), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return d.writeError("clear", err)
	}
	return nil
}

// Write appends rows as raw text in chunks, paced by the write limiter.
func (d *Destination) Write(ctx context.Context, rows [][]string) error {
	logger := logging.FromContext(ctx)
	id, err := d.resolve(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < len(rows); start += d.cfg.ChunkRows {
		end := min(start+d.cfg.ChunkRows, len(rows))
		if err := d.limiter.Wait(ctx); err != nil {
			return d.writeError("write", err)
		}

		vr := &sheets.ValueRange{Values: toInterfaces(rows[start:end])}
		_, err := d.sheets.Spreadsheets.Values.Append(id, d.sheetRange()+"!A1", vr).
			ValueInputOption("RAW").
			InsertDataOption("OVERWRITE").
			Context(ctx).
			Do()
		if err != nil {
			return d.writeError("write", err)
		}
		logger.Debug().
			Int("from", start).
			Int("to", end).
			Msg("Wrote chunk")
	}
	return nil
}

// driveQuote renders s as a single-quoted Drive query string literal.
func driveQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}

// resolve returns the spreadsheet ID, looking it up by title once.
func (d *Destination) resolve(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.spreadsheetID != "" {
		return d.spreadsheetID, nil
	}

	q := fmt.Sprintf("name = %s and mimeType = '%s' and trashed = false",
		driveQuote(d.cfg.SpreadsheetTitle), spreadsheetMime)
	list, err := d.drive.Files.List().
		Q(q).
		Fields("files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", d.accessError(err)
	}
	if len(list.Files) == 0 {
		return "", &errors.AccessError{
			Resource:   "spreadsheet",
			ID:         d.cfg.SpreadsheetTitle,
			StatusCode: 404,
			Message:    "no spreadsheet with this title is shared with the service account",
		}
	}
	if len(list.Files) > 1 {
		logging.FromContext(ctx).Warn().
			Str("title", d.cfg.SpreadsheetTitle).
			Int("matches", len(list.Files)).
			Msg("Several spreadsheets share this title, using the first")
	}
	d.spreadsheetID = list.Files[0].Id
	return d.spreadsheetID, nil
}

// ensureWorksheet checks the worksheet exists and creates it when allowed.
func (d *Destination) ensureWorksheet(ctx context.Context, id string) (bool, error) {
	ss, err := d.sheets.Spreadsheets.Get(id).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return false, d.accessError(err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == d.cfg.Worksheet {
			return false, nil
		}
	}

	if !d.cfg.CreateIfMissing {
		return false, &errors.AccessError{
			Resource:   "worksheet",
			ID:         d.cfg.Worksheet,
			StatusCode: 404,
			Message:    "worksheet not found",
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: d.cfg.Worksheet},
			},
		}},
	}
	if _, err := d.sheets.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do(); err != nil {
		return false, d.writeError("create worksheet", err)
	}
	logging.FromContext(ctx).Info().Str("worksheet", d.cfg.Worksheet).Msg("Created worksheet")
	return true, nil
}

func (d *Destination) sheetRange() string {
	return "'" + strings.ReplaceAll(d.cfg.Worksheet, "'", "''") + "'"
}

func (d *Destination) resource() string {
	return "worksheet " + d.cfg.Worksheet
}

func (d *Destination) accessError(err error) error {
	status, msg := apiStatus(err)
	return &errors.AccessError{
		Resource:   "spreadsheet",
		ID:         d.spreadsheetID,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}

// writeError maps permission and not-found failures to AccessError and
// everything else (size limits, quota, server errors) to WriteError.
func (d *Destination) writeError(op string, err error) error {
	status, msg := apiStatus(err)
	switch status {
	case 401, 403, 404:
		return &errors.AccessError{Resource: d.resource(), ID: d.spreadsheetID, StatusCode: status, Message: msg, Err: err}
	}
	return &errors.WriteError{Resource: d.resource(), Operation: op, StatusCode: status, Message: msg, Err: err}
}

func apiStatus(err error) (int, string) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Body
		}
		return gerr.Code, msg
	}
	return 0, err.Error()
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				out[i][j] = fmt.Sprint(v)
			}
		}
	}
	return out
}

func toInterfaces(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = make([]interface{}, len(row))
		for j, v := range row {
			out[i][j] = v
		}
	}
	return out
}
