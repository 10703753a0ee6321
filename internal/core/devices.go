package core

import (
	"sort"
	"strings"
)

// Metadata keys written by the pipeline. Header keys are copied verbatim
// alongside these.
const (
	MetaDevice            = "licor.device"
	MetaDeviceSerial      = "licor.device_serial"
	MetaConsoleVersion    = "licor.console_version"
	MetaHeadSerial        = "licor.head_serial"
	MetaHeadVersion       = "licor.head_version"
	MetaChamberType       = "licor.chamber_type"
	MetaChamberSerial     = "licor.chamber_serial"
	MetaFluorometerSerial = "licor.fluorometer_serial"
	MetaCalibrationDate   = "licor.calibration_date"
	MetaConfig            = "licor.config"
	MetaRegistryVersion   = "licor.registry_version"
	MetaSourceID          = "licor.source_id"
	MetaRows              = "licor.rows"
	MetaColumns           = "licor.columns"
)

// Device holds the header rules for one instrument model.
// Implementations are stateless.
type Device interface {
	// Name is the short selector, e.g. "6800".
	Name() string
	// Model is the product name, e.g. "LI-6800".
	Model() string
	// ValidateHeader checks the device-identifying header fields.
	ValidateHeader(header map[string]string) error
	// ExtractMetadata returns device identity under licor.-prefixed keys.
	ExtractMetadata(header map[string]string) map[string]string
}

var devices = map[string]Device{
	"6800": li6800{},
	"6400": li6400{},
}

// LookupDevice resolves a device selector. Both the short name ("6800") and
// the model name ("LI-6800") are accepted, case-insensitively.
func LookupDevice(name string) (Device, bool) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "LI-")
	d, ok := devices[key]
	return d, ok
}

// DeviceNames returns the short names of every known device, sorted.
func DeviceNames() []string {
	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// li6800 is the LI-6800 Portable Photosynthesis System (Bluestem console software).
type li6800 struct{}

var li6800Required = []string{"Console s/n", "Console ver", "Head s/n"}

var li6800Optional = []struct {
	header string
	key    string
}{
	{"Head s/n", MetaHeadSerial},
	{"Head ver", MetaHeadVersion},
	{"Chamber type", MetaChamberType},
	{"Chamber s/n", MetaChamberSerial},
	{"Fluorometer", MetaFluorometerSerial},
	{"Factory cal date", MetaCalibrationDate},
}

func (li6800) Name() string  { return "6800" }
func (li6800) Model() string { return "LI-6800" }

func (d li6800) ValidateHeader(header map[string]string) error {
	for _, field := range li6800Required {
		if strings.TrimSpace(header[field]) == "" {
			return missingRequiredHeader(field)
		}
	}
	if !strings.Contains(header["Console ver"], "Bluestem") {
		return invalidFileFormat(d.Model())
	}
	return nil
}

func (d li6800) ExtractMetadata(header map[string]string) map[string]string {
	md := map[string]string{
		MetaDevice:         d.Model(),
		MetaDeviceSerial:   header["Console s/n"],
		MetaConsoleVersion: header["Console ver"],
	}
	for _, f := range li6800Optional {
		if v, ok := header[f.header]; ok && v != "" {
			md[f.key] = v
		}
	}
	return md
}

// li6400 is recognized so it can be named in errors, but no configuration
// is implemented for it.
type li6400 struct{}

func (li6400) Name() string  { return "6400" }
func (li6400) Model() string { return "LI-6400" }

func (d li6400) ValidateHeader(map[string]string) error {
	return invalidFileFormat(d.Model())
}

func (d li6400) ExtractMetadata(map[string]string) map[string]string {
	return map[string]string{MetaDevice: d.Model()}
}
