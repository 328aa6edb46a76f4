// Package filestore provides file-backed adapters for offline runs: a saved
// analytics XML export (or a CSV extract) as the Source, and a CSV file as
// the Destination.
package filestore

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/eccnsync/internal/zoho"
	"github.com/agentstation/eccnsync/pkg/constants"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/logging"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/sources"
)

// Source reads a record set from a file. Files ending in .csv are read as
// CSV with a header row; anything else is parsed as an analytics XML export.
type Source struct {
	Path string
}

// NewSource creates a file Source.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// ID returns the adapter kind for the file extension.
func (s *Source) ID() sources.ID {
	if isCSV(s.Path) {
		return sources.CSVFileID
	}
	return sources.XMLFileID
}

// Fetch reads and parses the file.
func (s *Source) Fetch(ctx context.Context) (records.RecordSet, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return records.RecordSet{}, &errors.FetchError{Source: s.ID().String(), URL: s.Path, Err: errors.NewIOError("open", s.Path, err)}
	}
	defer func() { _ = f.Close() }()

	var set records.RecordSet
	if isCSV(s.Path) {
		set, err = readCSV(f, s.Path)
	} else {
		set, err = zoho.ParseExport(f)
	}
	if err != nil {
		return records.RecordSet{}, &errors.FetchError{Source: s.ID().String(), URL: s.Path, Err: err}
	}

	logging.FromContext(ctx).Info().
		Str("file", s.Path).
		Int("rows", set.Len()).
		Msg("Read source file")
	return set, nil
}

// Destination is a CSV working copy. Reads come from Path; writes go to
// Output when set, otherwise back to Path.
type Destination struct {
	Path   string
	Output string

	cleared bool
}

// NewDestination creates a CSV Destination.
func NewDestination(path, output string) *Destination {
	return &Destination{Path: path, Output: output}
}

// ID returns sources.CSVFileID.
func (d *Destination) ID() sources.ID {
	return sources.CSVFileID
}

// Read returns the file content. A missing file reads as an empty set.
func (d *Destination) Read(ctx context.Context) (records.RecordSet, error) {
	f, err := os.Open(d.Path)
	if os.IsNotExist(err) {
		logging.FromContext(ctx).Info().Str("file", d.Path).Msg("Destination file does not exist, starting empty")
		return records.RecordSet{}, nil
	}
	if err != nil {
		return records.RecordSet{}, &errors.AccessError{Resource: "file", ID: d.Path, Err: errors.NewIOError("open", d.Path, err)}
	}
	defer func() { _ = f.Close() }()

	set, err := readCSV(f, d.Path)
	if err != nil {
		return records.RecordSet{}, &errors.AccessError{Resource: "file", ID: d.Path, Err: err}
	}
	return set, nil
}

// Clear truncates the output file.
func (d *Destination) Clear(ctx context.Context) error {
	target := d.target()
	if err := os.MkdirAll(filepath.Dir(target), constants.DirPermissions); err != nil {
		return &errors.AccessError{Resource: "file", ID: target, Err: errors.NewIOError("mkdir", filepath.Dir(target), err)}
	}
	if err := os.WriteFile(target, nil, constants.FilePermissions); err != nil {
		return &errors.WriteError{Resource: "file " + target, Operation: "clear", Err: errors.NewIOError("truncate", target, err)}
	}
	d.cleared = true
	return nil
}

// Write replaces the output file with rows. The file is written to a
// temporary sibling first and renamed into place.
func (d *Destination) Write(ctx context.Context, rows [][]string) error {
	target := d.target()
	tmp, err := os.CreateTemp(filepath.Dir(target), ".eccnsync_*.csv")
	if err != nil {
		return d.writeError(target, errors.NewIOError("create", filepath.Dir(target), err))
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return d.writeError(target, errors.NewIOError("write", tmpPath, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return d.writeError(target, errors.NewIOError("write", tmpPath, err))
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return d.writeError(target, errors.NewIOError("chmod", tmpPath, err))
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return d.writeError(target, errors.NewIOError("rename", target, err))
	}

	logging.FromContext(ctx).Info().
		Str("file", target).
		Int("rows", max(len(rows)-1, 0)).
		Msg("Wrote destination file")
	return nil
}

func (d *Destination) writeError(target string, err error) error {
	return &errors.WriteError{Resource: "file " + target, Operation: "write", Cleared: d.cleared, Err: err}
}

func (d *Destination) target() string {
	if d.Output != "" {
		return d.Output
	}
	return d.Path
}

func readCSV(r io.Reader, name string) (records.RecordSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			pe := errors.NewParseError("csv", name, perr.Err.Error(), err)
			pe.Line = perr.Line
			return records.RecordSet{}, pe
		}
		return records.RecordSet{}, errors.WrapIO("read", name, err)
	}
	if len(rows) == 0 {
		return records.RecordSet{}, nil
	}
	return records.FromRows(rows[0], rows[1:]), nil
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
