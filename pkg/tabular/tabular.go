// Package tabular parses comma-separated spreadsheet exports into rows of
// string fields.
//
// The dialect is the one produced by common spreadsheet "Download as CSV"
// features: fields separated by commas, optionally enclosed in double quotes,
// with a literal quote written as two quotes. Quoted fields may contain commas
// and line breaks.
//
// Parsing is permissive. Empty lines are dropped, ragged rows are returned
// as-is and an unterminated quote simply runs to the end of the input.
package tabular

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

const (
	comma = ','
	quote = '"'
)

// Parse splits text into rows of fields.
//
// Rows end at "\n", "\r\n" or a lone "\r" outside quotes. A row consisting
// of nothing (an empty line) is skipped entirely; a row holding a single
// empty quoted field ("") is kept.
func Parse(text string) [][]string {
	var (
		rows    [][]string
		row     []string
		field   strings.Builder
		inQuote bool
		touched bool // current row has any content, quotes included
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		if touched {
			endField()
			rows = append(rows, row)
		}
		row = nil
		field.Reset()
		touched = false
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == quote:
			touched = true
			if inQuote && i+1 < len(text) && text[i+1] == quote {
				field.WriteByte(quote)
				i++
				continue
			}
			inQuote = !inQuote
		case inQuote:
			field.WriteByte(ch)
		case ch == comma:
			touched = true
			endField()
		case ch == '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		case ch == '\n':
			endRow()
		default:
			touched = true
			field.WriteByte(ch)
		}
	}
	endRow()
	return rows
}

// utf8BOM is stripped from the start of files saved by spreadsheet tools.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads path and parses its contents with [Parse].
func ParseFile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(string(bytes.TrimPrefix(data, utf8BOM))), nil
}

// Column returns the index of the first header cell equal to name, compared
// case-insensitively after trimming surrounding whitespace. It returns -1
// when no cell matches.
func Column(header []string, name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, cell := range header {
		if strings.ToLower(strings.TrimSpace(cell)) == want {
			return i
		}
	}
	return -1
}

// Cell returns row[i], or "" when the row is too short or i is negative.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
