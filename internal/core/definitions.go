package core

// definitions.go loads the versioned variable definition source.
//
// The source is TOML. Variables are grouped into sections that mirror the
// console's group row; named sets list the variables each configuration
// builds its requirements from:
//
//	version = "2025.05.1"
//
//	[sets]
//	gas-exchange = ["obs", "A", ...]
//
//	[[sections]]
//	name = "GasEx"
//	variables = [
//	  { name = "A", label = "A", units = "µmol m⁻² s⁻¹", description = "Net CO2 assimilation rate" },
//	]

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed definitions/licor.toml
var embeddedDefinitions string

// Definitions is a decoded definition source.
type Definitions struct {
	Version   string
	Variables []VariableDefinition
	Sets      map[string][]string
}

type definitionFile struct {
	Version  string              `toml:"version"`
	Sets     map[string][]string `toml:"sets"`
	Sections []definitionSection `toml:"sections"`
}

type definitionSection struct {
	Name      string               `toml:"name"`
	Title     string               `toml:"title"`
	Variables []definitionVariable `toml:"variables"`
}

type definitionVariable struct {
	Name        string `toml:"name"`
	Label       string `toml:"label"`
	Units       string `toml:"units"`
	Description string `toml:"description"`
	Type        string `toml:"type"`
}

// LoadDefinitions decodes a definition source.
// Unknown keys are rejected so a typo in the source cannot silently drop a field.
func LoadDefinitions(r io.Reader) (*Definitions, error) {
	var file definitionFile
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("decode definitions: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode definitions: unknown keys %s", strings.Join(keys, ", "))
	}
	if file.Version == "" {
		return nil, fmt.Errorf("decode definitions: missing version")
	}

	defs := &Definitions{
		Version: file.Version,
		Sets:    file.Sets,
	}
	for _, section := range file.Sections {
		for _, v := range section.Variables {
			if v.Name == "" {
				return nil, fmt.Errorf("section %s: variable with empty name", section.Name)
			}
			dt := InferType(v.Units)
			if v.Type != "" {
				dt, err = ParseDataType(v.Type)
				if err != nil {
					return nil, fmt.Errorf("section %s: variable %q: %w", section.Name, v.Name, err)
				}
			}
			label := v.Label
			if label == "" {
				label = v.Name
			}
			defs.Variables = append(defs.Variables, VariableDefinition{
				Name:        v.Name,
				Label:       label,
				Units:       v.Units,
				Description: v.Description,
				Type:        dt,
				Section:     section.Name,
			})
		}
	}
	return defs, nil
}

// Registry builds an immutable registry from the decoded source.
func (d *Definitions) Registry() (*Registry, error) {
	reg, err := NewRegistry(d.Variables, d.Sets)
	if err != nil {
		return nil, err
	}
	reg.version = d.Version
	return reg, nil
}

// InferType derives a data type from a declared unit string.
// A variable with units is a measured quantity (Float); one without is Text.
func InferType(units string) DataType {
	if strings.TrimSpace(units) == "" {
		return TypeText
	}
	return TypeFloat
}
