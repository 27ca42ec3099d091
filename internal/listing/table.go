package listing

import (
	"strings"

	"github.com/menofiaacademy/academy-site/internal/logger"
)

const (
	// SkipMarker marks a spreadsheet cell as intentionally blank.
	SkipMarker = "##"

	byteOrderMark = "\uFEFF"
)

// table is a header plus the data rows whose shape matches it.
type table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// row resolves values by header name.
type row struct {
	t      *table
	values []string
}

// parseTable splits CSV text into a header and well-shaped rows. It returns nil
// when there is no header or no data line.
func parseTable(text string) *table {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil
	}

	header := splitFields(lines[0])
	for i, name := range header {
		header[i] = cleanHeader(name)
	}

	t := &table{
		header: header,
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := splitFields(line)
		if len(values) != len(header) {
			continue
		}
		for i, v := range values {
			values[i] = cleanField(v)
		}
		t.rows = append(t.rows, values)
	}

	return t
}

// missing returns the required column names absent from the header, in the
// order they were requested.
func (t *table) missing(required ...string) []string {
	var absent []string
	for _, name := range required {
		if _, ok := t.index[name]; !ok {
			absent = append(absent, name)
		}
	}
	return absent
}

// each calls fn for every data row in source order.
func (t *table) each(fn func(r row)) {
	for _, values := range t.rows {
		fn(row{t: t, values: values})
	}
}

// lookup returns the raw value of column and whether the column exists.
func (r row) lookup(column string) (string, bool) {
	i, ok := r.t.index[column]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// value applies the defaulting policy: an absent column, a blank value or the
// skip marker all resolve to fallback.
func (r row) value(column, fallback string) string {
	v, ok := r.lookup(column)
	if !ok || isPlaceholder(v) {
		return fallback
	}
	return v
}

// checkColumns logs and reports whether the table carries every required column.
func checkColumns(t *table, listingName string, required ...string) bool {
	absent := t.missing(required...)
	if len(absent) == 0 {
		return true
	}
	logger.Error("Sheet is missing required columns", logger.Fields{
		"listing": listingName,
		"missing": absent,
	}, nil)
	return false
}

func isPlaceholder(v string) bool {
	return v == "" || v == SkipMarker
}

// splitLines strips a leading BOM, trims the text and splits it on LF or CRLF.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, byteOrderMark)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// splitFields splits a line on commas that are outside quotes. A comma is inside
// quotes when an odd number of quote characters precede it on the line; doubled
// quotes are not treated as escapes.
func splitFields(line string) []string {
	var fields []string
	inQuotes := false
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, line[start:])
}

// cleanField trims whitespace and one surrounding pair of quotes.
func cleanField(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, `"`)
	v = strings.TrimSuffix(v, `"`)
	return strings.TrimSpace(v)
}

// cleanHeader trims whitespace and every surrounding quote from a column name.
func cleanHeader(name string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(name), `"`))
}
