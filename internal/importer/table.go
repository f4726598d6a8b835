// Package importer turns uploaded spreadsheets into validated inventory units.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"inventory-backend/internal/parse"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoHeader is returned when a file has no header row.
	ErrNoHeader = errors.New("file has no header row")
)

// Cell is one value from the file. Text is kept verbatim so unit numbers such
// as "0101" survive; Number holds the numeric reading when there is one.
type Cell struct {
	Text     string  `json:"text"`
	Number   float64 `json:"number,omitempty"`
	IsNumber bool    `json:"isNumber"`
}

func newCell(raw string) Cell {
	c := Cell{Text: strings.TrimSpace(raw)}
	if v, err := parse.Number(c.Text); err == nil {
		c.Number, c.IsNumber = v, true
	}
	return c
}

// Row is one data row keyed by header. Number is the row as the spreadsheet
// shows it: the header is row 1.
type Row struct {
	Number int             `json:"row"`
	Cells  map[string]Cell `json:"cells"`
}

// Value returns the trimmed text under header, or "" when header is empty or absent.
func (r Row) Value(header string) string {
	if header == "" {
		return ""
	}
	return r.Cells[header].Text
}

// SkippedRow is a row that could not be parsed.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Table is a parsed upload.
type Table struct {
	Filename string       `json:"filename"`
	Headers  []string     `json:"headers"`
	Rows     []Row        `json:"rows"`
	Skipped  []SkippedRow `json:"skipped,omitempty"`
}

// Parse picks the parser from the file extension.
func Parse(filename string, r io.Reader) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		t, err = ParseCSV(r)
	case ".xlsx", ".xlsm":
		t, err = ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	t.Filename = filepath.Base(filename)
	return t, nil
}

// ParseCSV reads a comma-separated file. Rows that cannot be parsed or whose
// column count differs from the header are skipped and reported.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := &Table{Headers: uniqueHeaders(header)}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				t.Skipped = append(t.Skipped, SkippedRow{Row: perr.StartLine, Reason: perr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		line, _ := cr.FieldPos(0)
		t.addRow(line, record)
	}
	return t, nil
}

// ParseXLSX reads the first sheet of a workbook.
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, ErrNoHeader
	}

	t := &Table{Headers: uniqueHeaders(rows[0])}
	for i, record := range rows[1:] {
		if len(record) > len(t.Headers) && !isBlank(record[len(t.Headers):]) {
			t.Skipped = append(t.Skipped, SkippedRow{Row: i + 2, Reason: "more values than header columns"})
			continue
		}
		t.addRow(i+2, record)
	}
	return t, nil
}

func (t *Table) addRow(number int, record []string) {
	if isBlank(record) {
		return
	}
	row := Row{Number: number, Cells: make(map[string]Cell, len(t.Headers))}
	for i, h := range t.Headers {
		if i < len(record) {
			row.Cells[h] = newCell(record[i])
		} else {
			row.Cells[h] = Cell{}
		}
	}
	t.Rows = append(t.Rows, row)
}

// uniqueHeaders names blank headers after their column and suffixes duplicates.
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s (%d)", h, n)
		}
		out[i] = h
	}
	return out
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
