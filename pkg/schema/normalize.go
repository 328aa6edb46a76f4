package schema

import (
	"slices"

	"github.com/agentstation/eccnsync/pkg/records"
)

// Normalize returns set restricted and extended to exactly columns, in that
// order. Missing columns are filled with null; extra columns are dropped.
// Nothing is validated here: this is fill-forward.
func Normalize(set records.RecordSet, columns []string) records.RecordSet {
	out := records.RecordSet{
		Columns: slices.Clone(columns),
		Records: make([]records.Record, len(set.Records)),
	}
	for i, r := range set.Records {
		rec := make(records.Record, len(columns))
		for _, c := range columns {
			rec[c] = r.Get(c)
		}
		out.Records[i] = rec
	}
	return out
}

// Normalize applies the schema's column list to set.
func (s Schema) Normalize(set records.RecordSet) records.RecordSet {
	return Normalize(set, s.Columns)
}

// PrepareSource applies the source-side transforms: derived columns are
// computed and blanked columns are forced to null. The input set is not
// modified.
func (s Schema) PrepareSource(set records.RecordSet) records.RecordSet {
	if len(s.Derived) == 0 && len(s.Blank) == 0 {
		return set
	}

	out := records.RecordSet{
		Columns: slices.Clone(set.Columns),
		Records: make([]records.Record, len(set.Records)),
	}
	for _, d := range s.Derived {
		if !slices.Contains(out.Columns, d.Column) {
			out.Columns = append(out.Columns, d.Column)
		}
	}

	for i, r := range set.Records {
		rec := r.Clone()
		for _, d := range s.Derived {
			k := d.From.Extract(r)
			if k.IsBlank() {
				rec[d.Column] = records.Null()
			} else {
				rec[d.Column] = records.String(k.Concat())
			}
		}
		for _, c := range s.Blank {
			rec[c] = records.Null()
		}
		out.Records[i] = rec
	}
	return out
}
