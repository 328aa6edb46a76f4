package differ

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/records"
)

func TestRecords(t *testing.T) {
	columns := []string{"Subform_id", "ECCN", "COO", "Remarks"}
	existing := records.Record{
		"Subform_id": records.String("A1"),
		"ECCN":       records.Null(),
		"COO":        records.String("US"),
		"Remarks":    records.String("call back"),
	}
	updated := records.Record{
		"Subform_id": records.String("A1"),
		"ECCN":       records.String("EAR99"),
		"COO":        records.String("MX"),
		"Remarks":    records.Null(),
	}

	changes := New(WithSides(map[string]authority.Side{"ECCN": authority.SideSource})).Records(existing, updated, columns)

	require.Len(t, changes, 3)
	assert.Equal(t, FieldChange{Column: "ECCN", OldValue: "", NewValue: "EAR99", Type: ChangeTypeAdd, Side: authority.SideSource}, changes[0])
	assert.Equal(t, ChangeTypeUpdate, changes[1].Type)
	assert.Equal(t, ChangeTypeRemove, changes[2].Type)
}

func TestRecordsNullEqualsEmpty(t *testing.T) {
	a := records.Record{"x": records.Null()}
	b := records.Record{"x": records.String("")}
	assert.Empty(t, New().Records(a, b, []string{"x"}))
}

func TestRecordsIgnored(t *testing.T) {
	a := records.Record{"x": records.String("1"), "y": records.String("1")}
	b := records.Record{"x": records.String("2"), "y": records.String("2")}
	changes := New(WithIgnoredColumns("y")).Records(a, b, []string{"x", "y"})
	require.Len(t, changes, 1)
	assert.Equal(t, "x", changes[0].Column)
}

func TestChangeset(t *testing.T) {
	c := NewChangeset()
	assert.False(t, c.HasChanges())
	assert.Equal(t, "No changes detected", c.String())

	c.Add("B2", records.Record{})
	c.Update("A1", []FieldChange{{Column: "ECCN", NewValue: "EAR99", Type: ChangeTypeAdd}})
	c.Update("A2", nil)
	c.Duplicate("A3")
	c.Duplicate("A3")
	c.Preserved = 2

	assert.True(t, c.HasChanges())
	assert.Equal(t, 1, c.Unchanged)
	assert.Equal(t, []string{"A3"}, c.Duplicates)
	assert.Equal(t, Summary{RowsAdded: 1, RowsUpdated: 1, FieldsChanged: 1, TotalChanges: 2}, c.Summary)
	assert.Equal(t, "Changeset: 1 added, 1 updated (1 fields), 2 preserved (Total: 2 changes)", c.String())

	var buf bytes.Buffer
	c.Print(&buf)
	assert.Contains(t, buf.String(), "Added Rows (1)")
	assert.Contains(t, buf.String(), `ECCN: "" → "EAR99"`)
	assert.Contains(t, buf.String(), "Duplicate Keys (1)")
}

func TestFilter(t *testing.T) {
	c := NewChangeset()
	c.Add("B2", records.Record{})
	c.Update("A1", []FieldChange{{Column: "ECCN"}})

	additions := c.Filter(ApplyAdditionsOnly)
	assert.Len(t, additions.Added, 1)
	assert.Empty(t, additions.Updated)
	assert.Equal(t, 1, additions.Unchanged)

	updates := c.Filter(ApplyUpdatesOnly)
	assert.Empty(t, updates.Added)
	assert.Len(t, updates.Updated, 1)

	assert.Same(t, c, c.Filter(ApplyAdditive))
}

func TestApplyStrategy(t *testing.T) {
	assert.True(t, ApplyAdditive.Allows(ChangeTypeUpdate))
	assert.True(t, ApplyAdditive.AllowsRows())
	assert.False(t, ApplyAdditionsOnly.Allows(ChangeTypeAdd))
	assert.True(t, ApplyAdditionsOnly.AllowsRows())
	assert.False(t, ApplyUpdatesOnly.AllowsRows())
}
