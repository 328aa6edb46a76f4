package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/keys"
	"github.com/agentstation/eccnsync/pkg/records"
)

func testSchema() Schema {
	return Schema{
		Columns: []string{"Subform_id", "Raptor Invoice", "grkey", "Date of Order Received", "Grainger SKU", "ECCN"},
		Key:     keys.Single("Subform_id"),
		Date: DateSpec{
			Column:        "Date of Order Received",
			SourceFormats: []string{"%d/%m/%Y"},
		},
		TieBreak: "Raptor Invoice",
		Derived: []Derived{{
			Column: "grkey",
			From: keys.Spec{Parts: []keys.Part{
				{Column: "Raptor Invoice", Delimiter: "|"},
				{Column: "Grainger SKU"},
			}},
		}},
		Blank: []string{"ECCN"},
	}
}

func TestNormalize(t *testing.T) {
	in := records.RecordSet{
		Columns: []string{"extra", "b", "a"},
		Records: []records.Record{
			{"extra": records.String("x"), "b": records.String("2"), "a": records.String("1")},
		},
	}

	out := Normalize(in, []string{"a", "b", "c"})

	assert.Equal(t, []string{"a", "b", "c"}, out.Columns)
	require.Len(t, out.Records, 1)
	assert.Equal(t, records.String("1"), out.Records[0]["a"])
	assert.True(t, out.Records[0]["c"].IsNull())
	_, hasExtra := out.Records[0]["extra"]
	assert.False(t, hasExtra)
	assert.Equal(t, records.String("x"), in.Records[0]["extra"], "input untouched")
}

func TestNormalizeEmpty(t *testing.T) {
	out := Normalize(records.RecordSet{}, []string{"a"})
	assert.Equal(t, []string{"a"}, out.Columns)
	assert.Empty(t, out.Records)
}

func TestWithDefaults(t *testing.T) {
	s := testSchema().WithDefaults()
	assert.Equal(t, DuplicatesFirst, s.Duplicates)
	assert.Equal(t, ModeMerge, s.Mode)
	assert.Equal(t, []string{"%d/%m/%Y"}, s.Date.DestinationFormats)
	assert.Equal(t, "%d/%m/%Y", s.Date.OutputFormat)
}

func TestValidate(t *testing.T) {
	require.NoError(t, testSchema().Validate())

	tests := []struct {
		name   string
		mutate func(*Schema)
	}{
		{"no columns", func(s *Schema) { s.Columns = nil }},
		{"duplicate column", func(s *Schema) { s.Columns = append(s.Columns, "ECCN") }},
		{"key outside schema", func(s *Schema) { s.Key = keys.Single("Invoice_ID") }},
		{"empty key", func(s *Schema) { s.Key = keys.Spec{} }},
		{"date outside schema", func(s *Schema) { s.Date.Column = "Delivery Date" }},
		{"date without formats", func(s *Schema) { s.Date.SourceFormats = nil }},
		{"bad date format", func(s *Schema) { s.Date.OutputFormat = "dd/mm/yyyy" }},
		{"tie break outside schema", func(s *Schema) { s.TieBreak = "SNO" }},
		{"derived outside schema", func(s *Schema) { s.Derived[0].Column = "other" }},
		{"blank outside schema", func(s *Schema) { s.Blank = []string{"HS_code"} }},
		{"bad authority side", func(s *Schema) { s.Authorities = []authority.Field{{Column: "ECCN", Side: "both"}} }},
		{"bad duplicate policy", func(s *Schema) { s.Duplicates = "random" }},
		{"bad mode", func(s *Schema) { s.Mode = "upsert" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSchema()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsConfig(err))
		})
	}
}

func TestPrepareSource(t *testing.T) {
	s := testSchema()
	in := records.RecordSet{
		Columns: []string{"Subform_id", "Raptor Invoice", "Grainger SKU", "ECCN"},
		Records: []records.Record{
			{
				"Subform_id":     records.String("1"),
				"Raptor Invoice": records.String("INV-9|x"),
				"Grainger SKU":   records.String("SKU1"),
				"ECCN":           records.String("EAR99"),
			},
			{"Subform_id": records.String("2")},
		},
	}

	out := s.PrepareSource(in)

	assert.Contains(t, out.Columns, "grkey")
	assert.Equal(t, records.String("INV-9SKU1"), out.Records[0]["grkey"])
	assert.True(t, out.Records[0]["ECCN"].IsNull(), "blank columns are cleared on the source side")
	assert.True(t, out.Records[1]["grkey"].IsNull(), "blank derived key stays null")
	assert.Equal(t, records.String("EAR99"), in.Records[0]["ECCN"], "input untouched")
}

func TestPrepareSourceNoop(t *testing.T) {
	s := Schema{Columns: []string{"a"}, Key: keys.Single("a")}
	in := records.New("a")
	assert.Equal(t, in, s.PrepareSource(in))
}
