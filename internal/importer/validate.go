package importer

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"inventory-backend/internal/model"
	"inventory-backend/internal/parse"
)

// ErrInvalidImport is wrapped by a Report that failed validation.
var ErrInvalidImport = errors.New("import failed validation")

// Issue is one validation problem. Row is 0 for problems with the file as a whole.
type Issue struct {
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Row == 0 {
		return i.Message
	}
	return fmt.Sprintf("row %d: %s", i.Row, i.Message)
}

// Report is the outcome of validating a table against a mapping.
type Report struct {
	Valid    bool         `json:"valid"`
	Rows     int          `json:"rows"`
	Issues   []Issue      `json:"issues"`
	Skipped  []SkippedRow `json:"skipped,omitempty"`
	Unmapped []string     `json:"unmappedRequired,omitempty"`
}

// Validate checks every row and collects every problem instead of stopping at the first.
func Validate(t *Table, m Mapping) *Report {
	rep := &Report{Rows: len(t.Rows), Skipped: t.Skipped}

	known := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		known[h] = true
	}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		header := m[key]
		if header == "" {
			continue
		}
		if _, ok := FieldByKey(key); !ok {
			rep.add(0, key, fmt.Sprintf("unknown field %q", key))
		} else if !known[header] {
			rep.add(0, key, fmt.Sprintf("column %q for %s is not in the file", header, key))
		}
	}
	for _, key := range m.MissingRequired() {
		f, _ := FieldByKey(key)
		rep.Unmapped = append(rep.Unmapped, key)
		rep.add(0, key, fmt.Sprintf("required field %s is not mapped", f.Label))
	}
	if len(t.Rows) == 0 {
		rep.add(0, "", "file contains no data rows")
	}

	for _, row := range t.Rows {
		validateRow(rep, row, m)
	}
	rep.Valid = len(rep.Issues) == 0
	return rep
}

func validateRow(rep *Report, row Row, m Mapping) {
	for _, f := range Fields {
		header := m[f.Key]
		if header == "" {
			continue
		}
		v := row.Value(header)
		if v == "" {
			if f.Required {
				rep.add(row.Number, f.Key, fmt.Sprintf("%s is required", f.Label))
			}
			continue
		}
		switch f.Kind {
		case KindNumber:
			n, err := parse.Number(v)
			if err != nil {
				rep.add(row.Number, f.Key, fmt.Sprintf("%s %q is not a number", f.Label, v))
			} else if n < 0 || (f.Key == FieldTotalArea && n == 0) {
				rep.add(row.Number, f.Key, fmt.Sprintf("%s must be greater than zero", f.Label))
			}
		case KindInt:
			if _, err := parse.Int(v); err != nil {
				rep.add(row.Number, f.Key, fmt.Sprintf("%s %q is not a whole number", f.Label, v))
			}
		case KindStatus:
			if _, ok := model.ParseStatus(v); !ok {
				rep.add(row.Number, f.Key, fmt.Sprintf("unknown status %q", v))
			}
		}
	}

	status, ok := model.ParseStatus(row.Value(m[FieldStatus]))
	if !ok || !status.RequiresClientInfo() {
		return
	}
	for _, key := range []string{FieldClientName, FieldClientEmail, FieldAgentName, FieldAgencyName} {
		if row.Value(m[key]) == "" {
			f, _ := FieldByKey(key)
			rep.add(row.Number, key, fmt.Sprintf("%s is required for status %s", f.Label, status))
		}
	}
}

func (r *Report) add(row int, field, msg string) {
	r.Issues = append(r.Issues, Issue{Row: row, Field: field, Message: msg})
}

// Error summarises the report. It is only meaningful when the report is not valid.
func (r *Report) Error() string {
	msgs := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		msgs = append(msgs, i.String())
	}
	return fmt.Sprintf("import has %d problem(s): %s", len(r.Issues), strings.Join(msgs, "; "))
}

func (r *Report) Unwrap() error { return ErrInvalidImport }
