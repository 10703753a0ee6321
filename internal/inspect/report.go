// Package inspect summarizes a parsed dataset for a quick look before
// analysis: shape, type counts, columns that fell back to text and summary
// statistics for the key gas-exchange and fluorescence variables.
package inspect

import (
	"io"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/licor/internal/core"
)

// Variables summarized when present, in report order.
var (
	GasExchangeVariables  = []string{"obs", "A", "E", "Ca", "Ci", "gsw", "gbw", "Tleaf", "Pa"}
	FluorescenceVariables = []string{"F", "Fm'", "Fo'", "PhiPS2", "ETR", "NPQ", "qP"}
)

// Report is the inspection result for one dataset.
type Report struct {
	File         string            `yaml:"file"`
	Rows         int               `yaml:"rows"`
	Columns      int               `yaml:"columns"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
	Types        map[string]int    `yaml:"types"`
	Fallback     []string          `yaml:"fallback_columns,omitempty"`
	GasExchange  []VariableStats   `yaml:"gas_exchange,omitempty"`
	Fluorescence []VariableStats   `yaml:"fluorescence,omitempty"`
}

// VariableStats describes one column. Mean, Min and Max are set only for
// numeric columns with at least one value.
type VariableStats struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Units   string   `yaml:"units,omitempty"`
	Mean    *float64 `yaml:"mean,omitempty"`
	Min     *float64 `yaml:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty"`
	NonNull int      `yaml:"non_null"`
}

// Build summarizes ds. file labels the report.
func Build(file string, ds *core.Dataset) *Report {
	r := &Report{
		File:     file,
		Rows:     ds.Rows,
		Columns:  len(ds.Columns),
		Metadata: ds.Metadata,
		Types:    make(map[string]int),
	}

	for i := range ds.Columns {
		c := &ds.Columns[i]
		r.Types[c.Type.String()]++
		if c.FellBack() {
			r.Fallback = append(r.Fallback, c.Identifier)
		}
	}
	sort.Strings(r.Fallback)

	r.GasExchange = statsFor(ds, GasExchangeVariables)
	r.Fluorescence = statsFor(ds, FluorescenceVariables)
	return r
}

func statsFor(ds *core.Dataset, names []string) []VariableStats {
	var out []VariableStats
	for _, name := range names {
		if c, ok := ds.ColumnByName(name); ok {
			out = append(out, Stats(c))
		}
	}
	return out
}

// Stats computes the summary of one column.
func Stats(c *core.Column) VariableStats {
	s := VariableStats{Name: c.Name, Type: c.Type.String(), Units: c.Units}

	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < c.Len(); i++ {
		var v float64
		switch x := c.Value(i).(type) {
		case nil:
			continue
		case float64:
			v = x
		case int64:
			v = float64(x)
		default:
			s.NonNull++
			continue
		}
		s.NonNull++
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	numeric := c.Type == core.TypeFloat || c.Type == core.TypeInteger
	if numeric && s.NonNull > 0 {
		mean := sum / float64(s.NonNull)
		s.Mean, s.Min, s.Max = &mean, &lo, &hi
	}
	return s
}

// WriteYAML encodes reports as a YAML stream, one document per report.
func WriteYAML(w io.Writer, reports ...*Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return enc.Close()
}
