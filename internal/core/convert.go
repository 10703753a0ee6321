package core

// convert.go turns raw string columns into typed columns.
//
// Accepted literals per type:
//   - Float: decimal or scientific notation ("12", "-0.5", ".5", "1e-3").
//     No NaN, Inf, hex or thousands separators.
//   - Integer: optional sign and ASCII digits that fit in int64. "1.0" and
//     "1e3" are not integers.
//   - Boolean: "true" or "false", any case. "1" and "0" are not booleans.
//   - Text: anything.
//
// Null cells ("", "-", "none" in any case) convert to invalid pgtype values
// for every type and never cause a fallback.
//
// If any other cell in a column fails to parse, the whole column becomes
// Text holding the original strings. In strict mode the first such cell is
// a DataTypeError instead.

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	floatRegex   = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	integerRegex = regexp.MustCompile(`^[+-]?\d+$`)
)

// IsNullCell reports whether a trimmed cell represents a missing value.
func IsNullCell(s string) bool {
	return s == "" || s == "-" || strings.EqualFold(s, "none")
}

// ParseFloatCell parses a Float literal.
func ParseFloatCell(s string) (float64, bool) {
	if !floatRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseIntegerCell parses an Integer literal.
func ParseIntegerCell(s string) (int64, bool) {
	if !integerRegex.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseBooleanCell parses a Boolean literal.
func ParseBooleanCell(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	default:
		return false, false
	}
}

// Convert types every column of raw using the registry.
// The returned dataset has no identifiers or metadata yet.
func Convert(raw *RawFile, reg *Registry, opts ParseOptions) (*Dataset, error) {
	log := opts.logger()

	ds := &Dataset{
		Columns: make([]Column, len(raw.ColumnNames)),
		Rows:    len(raw.DataRows),
	}

	for i, name := range raw.ColumnNames {
		def, ok := reg.Lookup(name)
		if !ok {
			return nil, unknownVariable(name)
		}

		col := Column{
			Name:     name,
			Units:    raw.Units[i],
			Label:       def.Label,
			Description: def.Description,
			Declared:    def.Type,
			Type:        def.Type,
		}
		if raw.Categories != nil {
			col.Category = raw.Categories[i]
		}

		cells := raw.Column(i)
		row, ok := convertColumn(&col, cells)
		if !ok {
			if opts.Strict {
				return nil, dataTypeError(name, cells[row], def.Type)
			}
			log.Debug("column fell back to text",
				"column", name,
				"declared", def.Type.String(),
				"row", row+1,
				"value", cells[row],
			)
			col.Type = TypeText
			col.Floats, col.Integers, col.Booleans = nil, nil, nil
			col.Texts = textValues(cells)
		}
		ds.Columns[i] = col
	}

	return ds, nil
}

// convertColumn fills the value slice for col.Type. On failure it returns the
// index of the first cell that did not parse.
func convertColumn(col *Column, cells []string) (int, bool) {
	switch col.Type {
	case TypeFloat:
		col.Floats = make([]pgtype.Float8, len(cells))
		for i, s := range cells {
			if IsNullCell(s) {
				continue
			}
			f, ok := ParseFloatCell(s)
			if !ok {
				return i, false
			}
			col.Floats[i] = pgtype.Float8{Float64: f, Valid: true}
		}
	case TypeInteger:
		col.Integers = make([]pgtype.Int8, len(cells))
		for i, s := range cells {
			if IsNullCell(s) {
				continue
			}
			n, ok := ParseIntegerCell(s)
			if !ok {
				return i, false
			}
			col.Integers[i] = pgtype.Int8{Int64: n, Valid: true}
		}
	case TypeBoolean:
		col.Booleans = make([]pgtype.Bool, len(cells))
		for i, s := range cells {
			if IsNullCell(s) {
				continue
			}
			b, ok := ParseBooleanCell(s)
			if !ok {
				return i, false
			}
			col.Booleans[i] = pgtype.Bool{Bool: b, Valid: true}
		}
	default:
		col.Texts = textValues(cells)
	}
	return 0, true
}

// textValues keeps the original strings; only empty cells become null.
func textValues(cells []string) []pgtype.Text {
	out := make([]pgtype.Text, len(cells))
	for i, s := range cells {
		if s != "" {
			out[i] = pgtype.Text{String: s, Valid: true}
		}
	}
	return out
}
