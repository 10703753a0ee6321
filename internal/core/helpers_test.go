package core

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// Test Log Builder
// ----------------------------------------------------------------------------

// testLog describes a synthetic instrument log.
type testLog struct {
	header     [][2]string // ordered key/value pairs
	categories []string    // group row; written only when marked
	names      []string
	units      []string
	rows       [][]string
	marked     bool // write [Header]/[Data] markers
	crlf       bool
}

func (l testLog) bytes() []byte {
	var b strings.Builder
	nl := "\n"
	if l.crlf {
		nl = "\r\n"
	}
	line := func(cells []string) {
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteString(nl)
	}

	if l.marked {
		b.WriteString(headerMarker + nl)
	}
	for _, kv := range l.header {
		line([]string{kv[0], kv[1]})
	}
	if l.marked {
		b.WriteString(dataMarker + nl)
		line(l.categories)
	}
	line(l.names)
	line(l.units)
	for _, r := range l.rows {
		line(r)
	}
	return []byte(b.String())
}

// validHeader6800 returns a complete LI-6800 header.
func validHeader6800() [][2]string {
	return [][2]string{
		{"File opened", "2024-06-01 09:12:03"},
		{"Console s/n", "68C-901234"},
		{"Console ver", "Bluestem v.2.1.08"},
		{"Scripts ver", "2023.05  2.1.08, Aug 2023"},
		{"Head s/n", "68H-902211"},
		{"Head ver", "1.4.7"},
		{"Head cal", "{\"oxygen\": \"21\"}"},
		{"Chamber type", "6800-01A"},
		{"Chamber s/n", "MPF-551234"},
		{"Chamber rev", "0"},
		{"Chamber cal", "0"},
		{"Fluorometer", "MPF-551234"},
		{"Factory cal date", "2023-11-14"},
		{"SysConst:AvgTime", "4"},
		{"SysConst:Oxygen", "21"},
		{"Stability Definition:", "A (GasEx): Slp < 0.5 Per=20"},
	}
}

// requiredColumns returns the fluorometer configuration's required names.
func requiredColumns(t testing.TB, config string) []string {
	t.Helper()
	cfg, err := NewConfiguration(config, DefaultRegistry())
	if err != nil {
		t.Fatalf("NewConfiguration(%q) error = %v", config, err)
	}
	return cfg.Required()
}

// registryColumns picks n distinct registry names, starting with the
// configuration's required names.
func registryColumns(t testing.TB, config string, n int) []string {
	t.Helper()
	names := requiredColumns(t, config)
	seen := make(map[string]bool, n)
	for _, name := range names {
		seen[name] = true
	}
	for _, name := range DefaultRegistry().Names() {
		if len(names) >= n {
			break
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) < n {
		t.Fatalf("registry has %d names, need %d", len(names), n)
	}
	return names
}

// sampleValue returns a cell that parses as the given type.
func sampleValue(dt DataType, row, col int) string {
	switch dt {
	case TypeFloat:
		return fmt.Sprintf("%d.%d", row+1, col)
	case TypeInteger:
		return strconv.Itoa(row*1000 + col)
	case TypeBoolean:
		if (row+col)%2 == 0 {
			return "TRUE"
		}
		return "false"
	default:
		return fmt.Sprintf("r%dc%d", row, col)
	}
}

// registryLog builds a marked 6800 log with rows of valid values for names.
func registryLog(t testing.TB, names []string, rows int) testLog {
	t.Helper()
	reg := DefaultRegistry()
	l := testLog{header: validHeader6800(), names: names, marked: true}
	defs := make([]VariableDefinition, len(names))
	for i, name := range names {
		def, ok := reg.Lookup(name)
		if !ok {
			t.Fatalf("registry has no %q", name)
		}
		defs[i] = def
		l.categories = append(l.categories, def.Section)
		l.units = append(l.units, def.Units)
	}
	for r := 0; r < rows; r++ {
		row := make([]string, len(names))
		for c, def := range defs {
			row[c] = sampleValue(def.Type, r, c)
		}
		l.rows = append(l.rows, row)
	}
	return l
}

// standardLog builds a small standard-configuration log.
func standardLog(t testing.TB, rows int) testLog {
	t.Helper()
	return registryLog(t, requiredColumns(t, "standard"), rows)
}

// columnIndex returns the position of name in names.
func columnIndex(t testing.TB, names []string, name string) int {
	t.Helper()
	for i, n := range names {
		if n == name {
			return i
		}
	}
	t.Fatalf("column %q not in %v", name, names)
	return -1
}

func mustParser(t testing.TB, device, config string, opts ParseOptions) *Parser {
	t.Helper()
	p, err := NewParser(device, config, opts)
	if err != nil {
		t.Fatalf("NewParser(%q, %q) error = %v", device, config, err)
	}
	return p
}
