package core

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// DataType is the declared or effective type of a variable's values.
type DataType int

const (
	TypeText DataType = iota
	TypeFloat
	TypeInteger
	TypeBoolean
)

// String returns the lowercase type name used in the definition source.
func (t DataType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeFloat:
		return "float"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseDataType converts a definition-source type name to a DataType.
// Accepts the String() forms plus "string", "int" and "bool".
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string":
		return TypeText, nil
	case "float":
		return TypeFloat, nil
	case "integer", "int":
		return TypeInteger, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	default:
		return TypeText, fmt.Errorf("unknown data type %q", s)
	}
}

// VariableDefinition describes one known instrument variable.
type VariableDefinition struct {
	Name        string   // Internal name, matches the column-name row exactly
	Label       string   // Human-readable label
	Units       string   // Declared units (empty when unitless)
	Description string   // Free-text description
	Type        DataType // Declared value type
	Section     string   // Definition group, e.g. "GasEx"
}

// RawFile is the untyped structure of a log file.
// Every row in DataRows has len(ColumnNames) cells.
type RawFile struct {
	Header      map[string]string
	Categories  []string // Group row above the names; nil when the file has none
	ColumnNames []string
	Units       []string
	DataRows    [][]string
}

// NumColumns returns the number of columns in the data table.
func (r *RawFile) NumColumns() int {
	return len(r.ColumnNames)
}

// Column returns the cells of column i across all data rows.
func (r *RawFile) Column(i int) []string {
	cells := make([]string, len(r.DataRows))
	for row, values := range r.DataRows {
		cells[row] = values[i]
	}
	return cells
}

// Column is one typed column of a Dataset.
// Exactly one of the value slices is populated, selected by Type.
type Column struct {
	Name        string   // Original name from the file
	Identifier  string   // Resolved unique identifier
	Category    string   // Group from the category row, if any
	Units       string   // Units as written in the file's units row
	Label       string   // Registry label
	Description string   // Registry description
	Declared    DataType // Registry type
	Type        DataType // Effective type (Declared, or TypeText after fallback)

	Floats   []pgtype.Float8
	Integers []pgtype.Int8
	Booleans []pgtype.Bool
	Texts    []pgtype.Text
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.Type {
	case TypeFloat:
		return len(c.Floats)
	case TypeInteger:
		return len(c.Integers)
	case TypeBoolean:
		return len(c.Booleans)
	default:
		return len(c.Texts)
	}
}

// FellBack reports whether the column was converted to text because at
// least one value did not parse as the declared type.
func (c *Column) FellBack() bool {
	return c.Type != c.Declared
}

// IsNull reports whether value i is null.
func (c *Column) IsNull(i int) bool {
	switch c.Type {
	case TypeFloat:
		return !c.Floats[i].Valid
	case TypeInteger:
		return !c.Integers[i].Valid
	case TypeBoolean:
		return !c.Booleans[i].Valid
	default:
		return !c.Texts[i].Valid
	}
}

// Value returns value i as a Go value (float64, int64, bool, string) or nil when null.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.Type {
	case TypeFloat:
		return c.Floats[i].Float64
	case TypeInteger:
		return c.Integers[i].Int64
	case TypeBoolean:
		return c.Booleans[i].Bool
	default:
		return c.Texts[i].String
	}
}

// Dataset is the typed result of parsing one file.
type Dataset struct {
	Columns  []Column
	Metadata map[string]string
	Rows     int
}

// ColumnByName returns the first column whose original name matches.
func (d *Dataset) ColumnByName(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// ColumnByIdentifier returns the column with the given resolved identifier.
func (d *Dataset) ColumnByIdentifier(id string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Identifier == id {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// FallbackCount returns the number of columns that fell back to text.
func (d *Dataset) FallbackCount() int {
	n := 0
	for i := range d.Columns {
		if d.Columns[i].FellBack() {
			n++
		}
	}
	return n
}

// Identifiers returns the resolved identifiers in column order.
func (d *Dataset) Identifiers() []string {
	ids := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		ids[i] = c.Identifier
	}
	return ids
}

// ParseOptions controls a parse call.
type ParseOptions struct {
	// PreserveOriginalNames keeps the instrument's names as identifiers
	// (after duplicate disambiguation). When false, names are sanitized.
	PreserveOriginalNames bool

	// Strict rejects a column with an unparseable value instead of falling
	// back to text.
	Strict bool

	// Registry overrides the process-wide registry. Nil uses DefaultRegistry().
	Registry *Registry

	// Logger receives debug output for each stage. Nil uses slog.Default().
	Logger *slog.Logger

	// MaxInputBytes caps how much of a file or reader is read.
	// Zero means MaxInputBytes.
	MaxInputBytes int64
}

func (o ParseOptions) registry() *Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return DefaultRegistry()
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
