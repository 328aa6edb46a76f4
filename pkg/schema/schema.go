// Package schema holds the canonical column schema of a job and the normalizer
// that forces any ingested record set onto it. The Schema is the single
// configuration artifact every pipeline stage reads: column order, the join
// key, the date column and its formats, and the merge policies.
package schema

import (
	"fmt"
	"slices"

	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/dates"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/keys"
)

// DuplicatePolicy selects which destination row receives the source update
// when a key occurs more than once in the destination.
type DuplicatePolicy string

const (
	// DuplicatesFirst updates the first occurrence.
	DuplicatesFirst DuplicatePolicy = "first"
	// DuplicatesLast updates the last occurrence.
	DuplicatesLast DuplicatePolicy = "last"
)

// Mode selects how source rows are merged into the destination.
type Mode string

const (
	// ModeMerge updates matched rows and appends new ones.
	ModeMerge Mode = "merge"
	// ModeAppendMissing leaves destination rows untouched and only appends
	// source rows whose key the destination lacks.
	ModeAppendMissing Mode = "append-missing"
)

// DateSpec describes the designated date column.
type DateSpec struct {
	Column             string   `yaml:"column" json:"column" mapstructure:"column"`
	SourceFormats      []string `yaml:"source_formats" json:"source_formats" mapstructure:"source_formats"`
	DestinationFormats []string `yaml:"destination_formats" json:"destination_formats" mapstructure:"destination_formats"`
	OutputFormat       string   `yaml:"output_format" json:"output_format" mapstructure:"output_format"`
}

// Derived is a column computed on the source side from a key spec, e.g. a
// display key that concatenates an invoice prefix and a SKU.
type Derived struct {
	Column string    `yaml:"column" json:"column" mapstructure:"column"`
	From   keys.Spec `yaml:"from" json:"from" mapstructure:"from"`
}

// Schema is the canonical description of one reconciled sheet.
type Schema struct {
	Columns          []string          `yaml:"columns" json:"columns" mapstructure:"columns"`
	Key              keys.Spec         `yaml:"key" json:"key" mapstructure:"key"`
	Date             DateSpec          `yaml:"date" json:"date" mapstructure:"date"`
	TieBreak         string            `yaml:"tie_break,omitempty" json:"tie_break,omitempty" mapstructure:"tie_break"`
	Derived          []Derived         `yaml:"derived,omitempty" json:"derived,omitempty" mapstructure:"derived"`
	Blank            []string          `yaml:"blank,omitempty" json:"blank,omitempty" mapstructure:"blank"`
	Authorities      []authority.Field `yaml:"authorities,omitempty" json:"authorities,omitempty" mapstructure:"authorities"`
	Duplicates       DuplicatePolicy   `yaml:"duplicates,omitempty" json:"duplicates,omitempty" mapstructure:"duplicates"`
	Mode             Mode              `yaml:"mode,omitempty" json:"mode,omitempty" mapstructure:"mode"`
	DropInvalidDates bool              `yaml:"drop_invalid_dates,omitempty" json:"drop_invalid_dates,omitempty" mapstructure:"drop_invalid_dates"`
}

// WithDefaults returns a copy with unset policies filled in.
func (s Schema) WithDefaults() Schema {
	out := s
	if out.Duplicates == "" {
		out.Duplicates = DuplicatesFirst
	}
	if out.Mode == "" {
		out.Mode = ModeMerge
	}
	if len(out.Date.DestinationFormats) == 0 {
		out.Date.DestinationFormats = out.Date.SourceFormats
	}
	if out.Date.OutputFormat == "" && len(out.Date.DestinationFormats) > 0 {
		out.Date.OutputFormat = out.Date.DestinationFormats[0]
	}
	return out
}

// Validate checks the schema is internally consistent. Every failure is a
// ConfigError so the run aborts before touching the destination.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return configErr("schema has no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c == "" {
			return configErr("schema has an empty column name")
		}
		if seen[c] {
			return configErr(fmt.Sprintf("column %q listed twice", c))
		}
		seen[c] = true
	}

	if err := s.Key.Validate(); err != nil {
		return err
	}
	if missing := s.Key.Missing(s.Columns); len(missing) > 0 {
		return configErr(fmt.Sprintf("key columns %v are not in the schema", missing))
	}

	if s.Date.Column != "" {
		if !seen[s.Date.Column] {
			return configErr(fmt.Sprintf("date column %q is not in the schema", s.Date.Column))
		}
		if len(s.Date.SourceFormats) == 0 {
			return configErr("date column configured without source formats")
		}
		for _, f := range slices.Concat(s.Date.SourceFormats, s.Date.DestinationFormats, []string{s.Date.OutputFormat}) {
			if f != "" && !dates.ValidLayout(f) {
				return configErr(fmt.Sprintf("date format %q does not describe a date", f))
			}
		}
	}
	if s.TieBreak != "" && !seen[s.TieBreak] {
		return configErr(fmt.Sprintf("tie-break column %q is not in the schema", s.TieBreak))
	}

	for _, d := range s.Derived {
		if !seen[d.Column] {
			return configErr(fmt.Sprintf("derived column %q is not in the schema", d.Column))
		}
		if err := d.From.Validate(); err != nil {
			return err
		}
	}
	for _, c := range s.Blank {
		if !seen[c] {
			return configErr(fmt.Sprintf("blank column %q is not in the schema", c))
		}
	}
	for _, a := range s.Authorities {
		if !a.Side.IsValid() {
			return configErr(fmt.Sprintf("authority for %q has unknown side %q", a.Column, a.Side))
		}
	}

	switch s.Duplicates {
	case "", DuplicatesFirst, DuplicatesLast:
	default:
		return configErr(fmt.Sprintf("unknown duplicate policy %q", s.Duplicates))
	}
	switch s.Mode {
	case "", ModeMerge, ModeAppendMissing:
	default:
		return configErr(fmt.Sprintf("unknown merge mode %q", s.Mode))
	}
	return nil
}

// Authority builds the column authority table for the schema.
func (s Schema) Authority() authority.Authority {
	return authority.New(s.Authorities...)
}

// HasDate reports whether a date column is configured.
func (s Schema) HasDate() bool {
	return s.Date.Column != ""
}

// IsBlank reports whether the source must never populate column.
func (s Schema) IsBlank(column string) bool {
	return slices.Contains(s.Blank, column)
}

func configErr(msg string) error {
	return errors.NewConfigError("schema", msg, nil)
}
