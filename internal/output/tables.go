package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/eccnsync"
	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/schema"
)

// JobsToTableData converts jobs to table format.
func JobsToTableData(list []jobs.Job) Data {
	rows := make([][]string, 0, len(list))
	for _, j := range list {
		mode := string(j.Schema.WithDefaults().Mode)
		rows = append(rows, []string{
			j.Name,
			j.Sheet.Worksheet,
			j.Schema.Key.String(),
			mode,
			strconv.Itoa(len(j.Schema.Columns)),
			j.Description,
		})
	}
	return Data{
		Headers:         []string{"Name", "Worksheet", "Key", "Mode", "Columns", "Description"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

// SchemaToTableData lists a schema's columns with the role each one plays.
func SchemaToTableData(s schema.Schema) Data {
	s = s.WithDefaults()
	auth := s.Authority()
	keyCols := s.Key.Columns()
	derived := make(map[string]string, len(s.Derived))
	for _, d := range s.Derived {
		derived[d.Column] = d.From.String()
	}

	rows := make([][]string, 0, len(s.Columns))
	for i, c := range s.Columns {
		var roles []string
		for _, k := range keyCols {
			if k == c {
				roles = append(roles, "key")
				break
			}
		}
		if c == s.Date.Column {
			roles = append(roles, "date "+strings.Join(s.Date.SourceFormats, " | "))
		}
		if c == s.TieBreak {
			roles = append(roles, "tie-break")
		}
		if from, ok := derived[c]; ok {
			roles = append(roles, "derived from "+from)
		}
		if s.IsBlank(c) {
			roles = append(roles, "blank on source")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c,
			strings.Join(roles, ", "),
			string(auth.Preferred(c)),
		})
	}
	return Data{
		Headers:         []string{"#", "Column", "Role", "Preferred"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
}

// ChangesetToTableData flattens a changeset into one row per change.
func ChangesetToTableData(cs *differ.Changeset) Data {
	data := Data{
		Headers: []string{"Key", "Change", "Column", "Old", "New", "Side"},
	}
	if cs == nil {
		return data
	}
	for _, a := range cs.Added {
		data.Rows = append(data.Rows, []string{a.Key, "added", "", "", "", ""})
	}
	for _, u := range cs.Updated {
		for _, c := range u.Changes {
			data.Rows = append(data.Rows, []string{u.Key, string(c.Type), c.Column, c.OldValue, c.NewValue, string(c.Side)})
		}
	}
	for _, k := range cs.Duplicates {
		data.Rows = append(data.Rows, []string{k, "duplicate", "", "", "", ""})
	}
	return data
}

// ReportsToTableData summarizes job runs, one row per job.
func ReportsToTableData(reports []*eccnsync.Report) Data {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		if r == nil {
			continue
		}
		status := "failed"
		written := "-"
		if r.Outcome != nil {
			status = string(r.Outcome.Status)
			written = strconv.Itoa(r.Outcome.Rows)
		}
		if r.Error != "" {
			status = "failed: " + r.Error
		}
		rows = append(rows, []string{
			r.Job,
			strconv.Itoa(r.Stats.SourceRows),
			strconv.Itoa(r.Stats.DestinationRows),
			strconv.Itoa(r.Stats.Added),
			strconv.Itoa(r.Stats.Updated),
			strconv.Itoa(r.Stats.Preserved),
			strconv.Itoa(r.Stats.InvalidDates),
			written,
			status,
			fmt.Sprintf("%.1fs", r.Duration.Seconds()),
		})
	}
	right := AlignRight
	return Data{
		Headers: []string{"Job", "Source", "Destination", "Added", "Updated", "Preserved", "Bad Dates", "Written", "Status", "Took"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, right, right, right, right, right, right, right, AlignLeft, right,
		},
	}
}
