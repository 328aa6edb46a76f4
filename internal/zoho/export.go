package zoho

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/records"
)

type xmlRow struct {
	Columns []xmlColumn `xml:"column"`
}

type xmlColumn struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlError struct {
	Code    string `xml:"code"`
	Message string `xml:"message"`
}

// ParseExport decodes an XML export. Every <row> element anywhere in the
// document becomes a record of its <column name="..."> children; columns are
// ordered by first appearance and missing cells are null. An <error> payload
// or malformed XML is a FetchError.
func ParseExport(r io.Reader) (records.RecordSet, error) {
	dec := xml.NewDecoder(r)
	set := records.RecordSet{}
	seen := map[string]bool{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records.RecordSet{}, errors.NewFetchError("zoho", 0, "malformed export payload", errors.WrapParse("xml", "", err))
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "row":
			var row xmlRow
			if err := dec.DecodeElement(&row, &start); err != nil {
				return records.RecordSet{}, errors.NewFetchError("zoho", 0, "malformed export row", errors.WrapParse("xml", "", err))
			}
			rec := make(records.Record, len(row.Columns))
			for _, c := range row.Columns {
				name := records.CleanText(c.Name)
				if name == "" {
					continue
				}
				if !seen[name] {
					seen[name] = true
					set.Columns = append(set.Columns, name)
				}
				rec[name] = records.Parse(c.Value)
			}
			set.Append(rec)

		case "error":
			var e xmlError
			if err := dec.DecodeElement(&e, &start); err != nil {
				return records.RecordSet{}, errors.NewFetchError("zoho", 0, "malformed error payload", errors.WrapParse("xml", "", err))
			}
			return records.RecordSet{}, &errors.FetchError{
				Source:  "zoho",
				Code:    strings.TrimSpace(e.Code),
				Message: strings.TrimSpace(e.Message),
			}
		}
	}

	for _, rec := range set.Records {
		for _, c := range set.Columns {
			if _, ok := rec[c]; !ok {
				rec[c] = records.Null()
			}
		}
	}
	return set, nil
}
