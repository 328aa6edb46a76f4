// Package jobs holds the catalog of reconciliation jobs. A job binds one
// analytics export to one worksheet through one schema.
package jobs

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/eccnsync/internal/sheets"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/schema"
)

//go:embed jobs.yaml
var builtinYAML []byte

// Job is one export-to-worksheet reconciliation.
type Job struct {
	Name        string        `yaml:"name" json:"name" mapstructure:"name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
	ExportURL   string        `yaml:"export_url" json:"export_url" mapstructure:"export_url"`
	Sheet       sheets.Config `yaml:"sheet" json:"sheet" mapstructure:"sheet"`
	Schema      schema.Schema `yaml:"schema" json:"schema" mapstructure:"schema"`
}

// Validate checks the job can run.
func (j Job) Validate() error {
	if j.Name == "" {
		return errors.NewConfigError("jobs", "job without a name", nil)
	}
	if j.ExportURL == "" {
		return errors.NewConfigError("jobs", fmt.Sprintf("job %s has no export_url", j.Name), nil)
	}
	if err := j.Sheet.Validate(); err != nil {
		return errors.NewConfigError("jobs", fmt.Sprintf("job %s: %v", j.Name, err), err)
	}
	if err := j.Schema.Validate(); err != nil {
		return errors.NewConfigError("jobs", fmt.Sprintf("job %s: %v", j.Name, err), err)
	}
	return nil
}

// Overlay returns j with every non-zero field of o applied. A schema in o
// replaces the whole schema; sheet settings are overlaid field by field.
func (j Job) Overlay(o Job) Job {
	out := j
	if o.Description != "" {
		out.Description = o.Description
	}
	if o.ExportURL != "" {
		out.ExportURL = o.ExportURL
	}
	if o.Sheet.SpreadsheetID != "" {
		out.Sheet.SpreadsheetID = o.Sheet.SpreadsheetID
		out.Sheet.SpreadsheetTitle = ""
	}
	if o.Sheet.SpreadsheetTitle != "" {
		out.Sheet.SpreadsheetTitle = o.Sheet.SpreadsheetTitle
	}
	if o.Sheet.Worksheet != "" {
		out.Sheet.Worksheet = o.Sheet.Worksheet
	}
	if o.Sheet.CreateIfMissing {
		out.Sheet.CreateIfMissing = true
	}
	if o.Sheet.ChunkRows > 0 {
		out.Sheet.ChunkRows = o.Sheet.ChunkRows
	}
	if o.Sheet.WritesPerMinute > 0 {
		out.Sheet.WritesPerMinute = o.Sheet.WritesPerMinute
	}
	if len(o.Schema.Columns) > 0 {
		out.Schema = o.Schema
	}
	return out
}

// Catalog is an ordered set of jobs with unique names.
type Catalog struct {
	jobs []Job
}

type catalogFile struct {
	Jobs []Job `yaml:"jobs"`
}

// Builtin returns the catalog shipped with the binary.
func Builtin() (*Catalog, error) {
	return Parse(builtinYAML)
}

// Parse decodes a catalog document and validates every job.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict()); err != nil {
		return nil, errors.NewParseError("yaml", "jobs", yaml.FormatError(err, false, true), err)
	}
	c := &Catalog{}
	for _, j := range file.Jobs {
		if err := c.add(j); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get returns the job named name.
func (c *Catalog) Get(name string) (Job, error) {
	i := c.index(name)
	if i < 0 {
		return Job{}, errors.NewConfigError("jobs", fmt.Sprintf("unknown job %q (known: %v)", name, c.Names()),
			errors.NewNotFoundError("job", name))
	}
	return c.jobs[i], nil
}

// List returns the jobs in catalog order.
func (c *Catalog) List() []Job {
	return slices.Clone(c.jobs)
}

// Names returns the job names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.jobs))
	for i, j := range c.jobs {
		names[i] = j.Name
	}
	return names
}

// Len returns the number of jobs.
func (c *Catalog) Len() int {
	return len(c.jobs)
}

// Merge overlays each override onto the job of the same name, or appends it
// as a new job. The result is validated before the catalog changes.
func (c *Catalog) Merge(overrides ...Job) error {
	next := &Catalog{jobs: slices.Clone(c.jobs)}
	for _, o := range overrides {
		if i := next.index(o.Name); i >= 0 {
			merged := next.jobs[i].Overlay(o)
			if err := merged.Validate(); err != nil {
				return err
			}
			next.jobs[i] = merged
			continue
		}
		if err := next.add(o); err != nil {
			return err
		}
	}
	c.jobs = next.jobs
	return nil
}

// Select resolves names to jobs. No names selects every job.
func (c *Catalog) Select(names ...string) ([]Job, error) {
	if len(names) == 0 {
		return c.List(), nil
	}
	out := make([]Job, 0, len(names))
	for _, n := range names {
		j, err := c.Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

func (c *Catalog) add(j Job) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if c.index(j.Name) >= 0 {
		return errors.NewConfigError("jobs", fmt.Sprintf("job %q defined twice", j.Name), nil)
	}
	c.jobs = append(c.jobs, j)
	return nil
}

func (c *Catalog) index(name string) int {
	return slices.IndexFunc(c.jobs, func(j Job) bool { return j.Name == name })
}
