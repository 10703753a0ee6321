package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func headerMap(pairs [][2]string) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		m[kv[0]] = kv[1]
	}
	return m
}

func TestLookupDevice(t *testing.T) {
	tests := []struct {
		input     string
		wantModel string
		wantOK    bool
	}{
		{"6800", "LI-6800", true},
		{"LI-6800", "LI-6800", true},
		{"li-6800", "LI-6800", true},
		{" 6800 ", "LI-6800", true},
		{"6400", "LI-6400", true},
		{"LI-6400", "LI-6400", true},
		{"6900", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, ok := LookupDevice(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("LookupDevice(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && d.Model() != tt.wantModel {
				t.Errorf("Model() = %q, want %q", d.Model(), tt.wantModel)
			}
		})
	}

	if diff := cmp.Diff([]string{"6400", "6800"}, DeviceNames()); diff != "" {
		t.Errorf("DeviceNames() mismatch (-want +got):\n%s", diff)
	}
}

func TestLI6800_ValidateHeader(t *testing.T) {
	without := func(key string) map[string]string {
		h := headerMap(validHeader6800())
		delete(h, key)
		return h
	}
	with := func(key, value string) map[string]string {
		h := headerMap(validHeader6800())
		h[key] = value
		return h
	}

	tests := []struct {
		name      string
		header    map[string]string
		wantKind  ErrorKind
		wantField string
	}{
		{name: "valid header", header: headerMap(validHeader6800())},
		{name: "missing console serial", header: without("Console s/n"), wantKind: KindMissingRequiredHeader, wantField: "Console s/n"},
		{name: "missing console version", header: without("Console ver"), wantKind: KindMissingRequiredHeader, wantField: "Console ver"},
		{name: "missing head serial", header: without("Head s/n"), wantKind: KindMissingRequiredHeader, wantField: "Head s/n"},
		{name: "blank head serial", header: with("Head s/n", "  "), wantKind: KindMissingRequiredHeader, wantField: "Head s/n"},
		{name: "not a bluestem console", header: with("Console ver", "OPEN 6.3.4"), wantKind: KindInvalidFileFormat},
		{name: "empty header reports first field", header: map[string]string{}, wantKind: KindMissingRequiredHeader, wantField: "Console s/n"},
	}

	d, _ := LookupDevice("6800")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.ValidateHeader(tt.header)
			if tt.wantKind == KindUnknown {
				if err != nil {
					t.Fatalf("ValidateHeader() error = %v", err)
				}
				return
			}
			var pe *Error
			if !errors.As(err, &pe) {
				t.Fatalf("ValidateHeader() error = %v, want *Error", err)
			}
			if pe.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", pe.Kind, tt.wantKind)
			}
			if pe.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", pe.Field, tt.wantField)
			}
			if tt.wantKind == KindInvalidFileFormat && pe.Device != "LI-6800" {
				t.Errorf("Device = %q, want LI-6800", pe.Device)
			}
		})
	}
}

func TestLI6800_ExtractMetadata(t *testing.T) {
	d, _ := LookupDevice("6800")

	got := d.ExtractMetadata(headerMap(validHeader6800()))
	want := map[string]string{
		MetaDevice:            "LI-6800",
		MetaDeviceSerial:      "68C-901234",
		MetaConsoleVersion:    "Bluestem v.2.1.08",
		MetaHeadSerial:        "68H-902211",
		MetaHeadVersion:       "1.4.7",
		MetaChamberType:       "6800-01A",
		MetaChamberSerial:     "MPF-551234",
		MetaFluorometerSerial: "MPF-551234",
		MetaCalibrationDate:   "2023-11-14",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractMetadata() mismatch (-want +got):\n%s", diff)
	}

	minimal := map[string]string{
		"Console s/n": "68C-1",
		"Console ver": "Bluestem v.2.0",
		"Head s/n":    "68H-1",
	}
	got = d.ExtractMetadata(minimal)
	if _, ok := got[MetaChamberType]; ok {
		t.Error("ExtractMetadata() set chamber type for a header without one")
	}
	if got[MetaHeadSerial] != "68H-1" {
		t.Errorf("head serial = %q, want 68H-1", got[MetaHeadSerial])
	}
}

func TestLI6400_RejectsEveryHeader(t *testing.T) {
	d, _ := LookupDevice("6400")
	err := d.ValidateHeader(headerMap(validHeader6800()))
	if !errors.Is(err, ErrInvalidFileFormat) {
		t.Fatalf("ValidateHeader() error = %v, want InvalidFileFormat", err)
	}
	var pe *Error
	errors.As(err, &pe)
	if pe.Device != "LI-6400" {
		t.Errorf("Device = %q, want LI-6400", pe.Device)
	}
}
