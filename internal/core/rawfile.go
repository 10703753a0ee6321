package core

// rawfile.go splits a log into its header and data table without
// interpreting either.
//
// Two layouts are accepted:
//
//	[Header]                      key<TAB>value
//	key<TAB>value                 key<TAB>value
//	...                           name<TAB>name<TAB>name...
//	[Data]                        unit<TAB>unit<TAB>unit...
//	group<TAB>group...            value<TAB>value<TAB>value...
//	name<TAB>name...
//	unit<TAB>unit...
//	value<TAB>value...
//
// Without markers the header ends at the first line with more than two
// fields; that line is the name row. Unmarked logs therefore need at least
// three columns, and a header value holding TABs of its own (as some
// "Stability Definition:" lines do) is taken for the name row. Consoles that
// write such headers also write the markers, where neither limit applies.

import (
	"fmt"
	"strings"
)

const (
	headerMarker = "[Header]"
	dataMarker   = "[Data]"
)

// table is the data region of a file: lines plus their 1-based line numbers.
type table struct {
	lines   []string
	numbers []int
}

func (t *table) add(line string, number int) {
	t.lines = append(t.lines, line)
	t.numbers = append(t.numbers, number)
}

// ParseRaw splits log bytes into header, column rows and data rows.
func ParseRaw(data []byte) (*RawFile, error) {
	lines := splitLines(DecodeInput(data))

	headerAt, dataAt := -1, -1
	for i, l := range lines {
		switch strings.TrimSpace(l) {
		case headerMarker:
			if headerAt < 0 {
				headerAt = i
			}
		case dataMarker:
			if dataAt < 0 {
				dataAt = i
			}
		}
	}

	switch {
	case headerAt >= 0 && dataAt < 0:
		return nil, invalidHeaderFormat("missing [Data] section")
	case headerAt < 0 && dataAt >= 0:
		return nil, invalidHeaderFormat("missing [Header] section")
	case headerAt >= 0 && dataAt < headerAt:
		return nil, invalidHeaderFormat("[Data] section must come after [Header] section")
	case headerAt >= 0:
		return parseMarked(lines, headerAt, dataAt)
	default:
		return parseUnmarked(lines)
	}
}

func parseMarked(lines []string, headerAt, dataAt int) (*RawFile, error) {
	raw := &RawFile{Header: parseHeader(lines[headerAt+1 : dataAt])}

	var t table
	for i := dataAt + 1; i < len(lines); i++ {
		if !isBlankLine(lines[i]) {
			t.add(lines[i], i+1)
		}
	}
	switch len(t.lines) {
	case 0:
		return nil, invalidHeaderFormat("missing column group row")
	case 1:
		return nil, invalidHeaderFormat("missing column name row")
	case 2:
		return nil, invalidHeaderFormat("missing units row")
	}

	return raw, fillTable(raw, t, true)
}

func parseUnmarked(lines []string) (*RawFile, error) {
	namesAt := -1
	for i, l := range lines {
		if strings.Count(l, "\t") > 1 {
			namesAt = i
			break
		}
	}
	if namesAt < 0 {
		return nil, invalidHeaderFormat("missing column name row")
	}

	raw := &RawFile{Header: parseHeader(lines[:namesAt])}

	var t table
	t.add(lines[namesAt], namesAt+1)
	for i := namesAt + 1; i < len(lines); i++ {
		if !isBlankLine(lines[i]) {
			t.add(lines[i], i+1)
		}
	}
	if len(t.lines) < 2 {
		return nil, invalidHeaderFormat("missing units row")
	}

	return raw, fillTable(raw, t, false)
}

// isBlankLine reports whether a line carries no cells at all. A line of
// only TABs still counts as a row for the group, name and units rows, where
// an instrument writes one for a unitless table.
func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == "" && !strings.Contains(line, "\t")
}

// isEmptyRow reports whether a data row holds nothing but whitespace.
// Such rows are dropped rather than read as short or all-null rows.
func isEmptyRow(line string) bool {
	return strings.TrimSpace(line) == ""
}

// parseHeader splits each line on its first TAB. Lines without a TAB are
// ignored and the last occurrence of a duplicate key wins.
func parseHeader(lines []string) map[string]string {
	header := make(map[string]string)
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		header[key] = strings.TrimSpace(value)
	}
	return header
}

// fillTable tokenizes the data region. withCategories marks that the first
// line is the group row.
func fillTable(raw *RawFile, t table, withCategories bool) error {
	nameIdx := 0
	if withCategories {
		nameIdx = 1
	}

	names := splitFields(t.lines[nameIdx])
	width := len(names)
	for width > 0 && names[width-1] == "" {
		width--
	}
	if width == 0 {
		return invalidHeaderFormat(fmt.Sprintf("empty column name row (line %d)", t.numbers[nameIdx]))
	}
	trailing := len(names) - width
	raw.ColumnNames = names[:width]

	row := func(i int) ([]string, error) {
		return fitRow(splitFields(t.lines[i]), width, trailing, t.numbers[i])
	}

	var err error
	if withCategories {
		if raw.Categories, err = row(0); err != nil {
			return err
		}
	}
	if raw.Units, err = row(nameIdx + 1); err != nil {
		return err
	}

	raw.DataRows = make([][]string, 0, len(t.lines)-nameIdx-2)
	for i := nameIdx + 2; i < len(t.lines); i++ {
		if isEmptyRow(t.lines[i]) {
			continue
		}
		cells, err := row(i)
		if err != nil {
			return err
		}
		raw.DataRows = append(raw.DataRows, cells)
	}
	return nil
}

// fitRow checks a row against the name row's width. Up to trailing extra
// empty fields (the echo of a trailing TAB on the name row) are dropped;
// any other difference is a malformed row.
func fitRow(fields []string, width, trailing, line int) ([]string, error) {
	if len(fields) == width {
		return fields, nil
	}
	if len(fields) > width && len(fields) <= width+trailing && allEmpty(fields[width:]) {
		return fields[:width], nil
	}
	return nil, malformedDataSection(width, len(fields), line)
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
