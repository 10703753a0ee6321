package core

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	if reg.Len() < 300 {
		t.Errorf("Len() = %d, want at least 300", reg.Len())
	}
	if reg.Version() == "" {
		t.Error("Version() is empty")
	}
	if got := len(reg.Names()); got != reg.Len() {
		t.Errorf("len(Names()) = %d, want %d", got, reg.Len())
	}

	wantSets := []string{"aquatic", "fluorescence", "gas-exchange", "soil"}
	if diff := cmp.Diff(wantSets, reg.Sets()); diff != "" {
		t.Errorf("Sets() mismatch (-want +got):\n%s", diff)
	}

	wantGasEx := []string{"obs", "A", "E", "Ca", "Ci", "gsw", "gbw", "Tleaf", "Tair", "Flow", "Pa"}
	if diff := cmp.Diff(wantGasEx, reg.VariablesInSet("gas-exchange")); diff != "" {
		t.Errorf("VariablesInSet(gas-exchange) mismatch (-want +got):\n%s", diff)
	}
	if got := reg.VariablesInSet("no-such-set"); got != nil {
		t.Errorf("VariablesInSet(no-such-set) = %v, want nil", got)
	}
}

func TestDefaultRegistry_Lookup(t *testing.T) {
	tests := []struct {
		name      string
		wantType  DataType
		wantUnits string
		wantFound bool
	}{
		{name: "A", wantType: TypeFloat, wantUnits: "µmol m⁻² s⁻¹", wantFound: true},
		{name: "obs", wantType: TypeInteger, wantFound: true},
		{name: "date", wantType: TypeText, wantFound: true},
		{name: "UseDynamic", wantType: TypeBoolean, wantFound: true},
		{name: "Fv/Fm", wantType: TypeFloat, wantFound: true},
		{name: "ΔCO2", wantType: TypeFloat, wantUnits: "µmol mol⁻¹", wantFound: true},
		{name: "Tleaf", wantType: TypeFloat, wantUnits: "°C", wantFound: true},
		{name: "NotAVariable", wantFound: false},
		{name: "a", wantFound: false}, // names are case-sensitive
	}

	reg := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := reg.Lookup(tt.name)
			if ok != tt.wantFound {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.name, ok, tt.wantFound)
			}
			if !ok {
				return
			}
			if def.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", def.Type, tt.wantType)
			}
			if tt.wantUnits != "" && def.Units != tt.wantUnits {
				t.Errorf("Units = %q, want %q", def.Units, tt.wantUnits)
			}
			if def.Section == "" {
				t.Error("Section is empty")
			}
		})
	}
}

func TestDefaultRegistry_Once(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Registry, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = DefaultRegistry()
		}(i)
	}
	wg.Wait()

	for i, r := range got {
		if r != got[0] {
			t.Errorf("DefaultRegistry() call %d returned a different registry", i)
		}
	}
}

func TestRegistry_VariablesInSetReturnsCopy(t *testing.T) {
	reg := DefaultRegistry()
	members := reg.VariablesInSet("soil")
	members[0] = "mutated"

	if reg.VariablesInSet("soil")[0] == "mutated" {
		t.Error("VariablesInSet exposes internal state")
	}
}

func TestNewRegistry(t *testing.T) {
	defs := []VariableDefinition{
		{Name: "A", Type: TypeFloat},
		{Name: "B", Type: TypeInteger},
		{Name: "C", Type: TypeText},
	}

	tests := []struct {
		name    string
		defs    []VariableDefinition
		sets    map[string][]string
		wantErr string
	}{
		{
			name: "valid synthetic table",
			defs: defs,
			sets: map[string][]string{"core": {"A", "B"}},
		},
		{
			name:    "duplicate name",
			defs:    append(append([]VariableDefinition(nil), defs...), VariableDefinition{Name: "A"}),
			wantErr: "variable already defined: A",
		},
		{
			name:    "set references unknown names",
			defs:    defs,
			sets:    map[string][]string{"core": {"A", "X", "Y"}},
			wantErr: "set core references unknown variables: X, Y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.defs, tt.sets)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("NewRegistry() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRegistry() error = %v", err)
			}
			if reg.Len() != len(tt.defs) {
				t.Errorf("Len() = %d, want %d", reg.Len(), len(tt.defs))
			}
			if diff := cmp.Diff([]string{"A", "B", "C"}, reg.Names()); diff != "" {
				t.Errorf("Names() mismatch (-want +got):\n%s", diff)
			}
			if reg.Version() != "" {
				t.Errorf("Version() = %q, want empty", reg.Version())
			}
		})
	}
}

func TestLoadDefinitions(t *testing.T) {
	source := `
version = "test-1"

[sets]
pair = ["a", "flag"]

[[sections]]
name = "One"
title = "First"
variables = [
  { name = "a", label = "Alpha", units = "kPa", description = "measured" },
  { name = "b", label = "", units = "", description = "no units" },
  { name = "flag", label = "flag", units = "", description = "switch", type = "boolean" },
]

[[sections]]
name = "Two"
variables = [
  { name = "n", label = "n", units = "s", description = "count", type = "integer" },
]
`
	defs, err := LoadDefinitions(strings.NewReader(source))
	if err != nil {
		t.Fatalf("LoadDefinitions() error = %v", err)
	}

	want := []VariableDefinition{
		{Name: "a", Label: "Alpha", Units: "kPa", Description: "measured", Type: TypeFloat, Section: "One"},
		{Name: "b", Label: "b", Description: "no units", Type: TypeText, Section: "One"},
		{Name: "flag", Label: "flag", Description: "switch", Type: TypeBoolean, Section: "One"},
		{Name: "n", Label: "n", Units: "s", Description: "count", Type: TypeInteger, Section: "Two"},
	}
	if diff := cmp.Diff(want, defs.Variables); diff != "" {
		t.Errorf("Variables mismatch (-want +got):\n%s", diff)
	}

	reg, err := defs.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	if reg.Version() != "test-1" {
		t.Errorf("Version() = %q, want test-1", reg.Version())
	}
	if diff := cmp.Diff([]string{"a", "flag"}, reg.VariablesInSet("pair")); diff != "" {
		t.Errorf("VariablesInSet(pair) mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefinitions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name:    "invalid toml",
			source:  `version = `,
			wantErr: "decode definitions",
		},
		{
			name:    "missing version",
			source:  `[[sections]]` + "\n" + `name = "x"`,
			wantErr: "missing version",
		},
		{
			name: "unknown key",
			source: `version = "1"
[[sections]]
name = "x"
colour = "red"`,
			wantErr: "unknown keys",
		},
		{
			name: "bad type",
			source: `version = "1"
[[sections]]
name = "x"
variables = [{ name = "v", type = "decimal" }]`,
			wantErr: `variable "v": unknown data type "decimal"`,
		},
		{
			name: "empty name",
			source: `version = "1"
[[sections]]
name = "x"
variables = [{ label = "v" }]`,
			wantErr: "variable with empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDefinitions(strings.NewReader(tt.source))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadDefinitions() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		units string
		want  DataType
	}{
		{"", TypeText},
		{"   ", TypeText},
		{"µmol m⁻² s⁻¹", TypeFloat},
		{"kPa", TypeFloat},
		{"°C", TypeFloat},
		{"%", TypeFloat},
	}
	for _, tt := range tests {
		if got := InferType(tt.units); got != tt.want {
			t.Errorf("InferType(%q) = %v, want %v", tt.units, got, tt.want)
		}
	}
}

func TestBuildRegistry_ConfigurationConsistency(t *testing.T) {
	// A source whose sets do not cover every configuration must be rejected.
	source := `version = "1"

[sets]
gas-exchange = ["A"]

[[sections]]
name = "x"
variables = [{ name = "A", units = "kPa" }]
`
	_, err := buildRegistry(source)
	if err == nil {
		t.Fatal("buildRegistry() error = nil, want missing set error")
	}
	if !strings.Contains(err.Error(), "registry has no set") {
		t.Errorf("buildRegistry() error = %v, want missing set", err)
	}

	if _, err := buildRegistry(embeddedDefinitions); err != nil {
		t.Errorf("buildRegistry(embedded) error = %v", err)
	}
}
