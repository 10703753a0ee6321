package core

import (
	"fmt"
	"sort"
	"strings"
)

// configurationSets lists the registry sets each configuration requires.
// Requirements are the union of the sets in declared order.
var configurationSets = map[string][]string{
	"standard":    {"gas-exchange"},
	"fluorometer": {"gas-exchange", "fluorescence"},
	"aquatic":     {"aquatic"},
	"soil":        {"soil"},
}

// compatibility lists the configurations implemented for each device.
// A device absent from this table supports none.
var compatibility = map[string][]string{
	"6800": {"standard", "fluorometer", "aquatic", "soil"},
}

// Configuration is a named measurement setup and the variables it requires.
type Configuration struct {
	name     string
	required []string
}

// NewConfiguration resolves a configuration's required variables against reg.
// An unknown name, or a registry lacking one of the configuration's sets,
// is an InvalidDeviceConfigCombination error.
func NewConfiguration(name string, reg *Registry) (*Configuration, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	sets, ok := configurationSets[name]
	if !ok {
		return nil, invalidCombination("", name)
	}

	seen := make(map[string]bool)
	var required []string
	for _, set := range sets {
		if !reg.HasSet(set) {
			return nil, unresolvedConfiguration(name, fmt.Errorf("registry has no set %q", set))
		}
		for _, v := range reg.VariablesInSet(set) {
			if seen[v] {
				continue
			}
			seen[v] = true
			required = append(required, v)
		}
	}
	return &Configuration{name: name, required: required}, nil
}

// Name returns the configuration name.
func (c *Configuration) Name() string {
	return c.name
}

// Required returns the required variable names in declared order.
func (c *Configuration) Required() []string {
	return append([]string(nil), c.required...)
}

// ValidateColumns checks that every required variable is among names.
// All missing variables are reported, in declared order.
func (c *Configuration) ValidateColumns(names []string) error {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var missing []string
	for _, req := range c.required {
		if !present[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return missingRequiredVariables(c.name, missing)
	}
	return nil
}

// ConfigurationNames returns every known configuration name, sorted.
func ConfigurationNames() []string {
	names := make([]string, 0, len(configurationSets))
	for name := range configurationSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SupportedConfigurations returns the configurations implemented for a device.
func SupportedConfigurations(device string) []string {
	d, ok := LookupDevice(device)
	if !ok {
		return nil
	}
	return append([]string(nil), compatibility[d.Name()]...)
}

// CheckCombination validates a device/configuration pairing without touching
// any file. Unknown devices, unknown configurations and unimplemented pairs
// all fail with InvalidDeviceConfigCombination.
func CheckCombination(device, config string) (Device, error) {
	d, ok := LookupDevice(device)
	if !ok {
		return nil, invalidCombination(device, config)
	}
	key := strings.ToLower(strings.TrimSpace(config))
	for _, c := range compatibility[d.Name()] {
		if c == key {
			return d, nil
		}
	}
	return nil, invalidCombination(device, config)
}

// checkConfigurations verifies that every configuration resolves against reg,
// so every required name exists in the registry.
func checkConfigurations(reg *Registry) error {
	for _, name := range ConfigurationNames() {
		cfg, err := NewConfiguration(name, reg)
		if err != nil {
			return err
		}
		if len(cfg.required) == 0 {
			return fmt.Errorf("configuration %s requires no variables", name)
		}
	}
	return nil
}
