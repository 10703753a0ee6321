package core

// errors.go defines the closed set of failures a parse can produce.
//
// Every failure is a *Error carrying its Kind and the fields needed to render
// a precise message. Use KindOf or errors.As to classify, or errors.Is with
// the Err* sentinels:
//
//	if errors.Is(err, core.ErrUnknownVariable) { ... }
//
// All kinds are terminal for the file being parsed.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies a category of parse failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindIO
	KindInvalidFileFormat
	KindMissingRequiredHeader
	KindMalformedDataSection
	KindInvalidHeaderFormat
	KindUnknownVariable
	KindMissingRequiredVariable
	KindInvalidDeviceConfigCombination
	KindDataTypeError
	KindUnsupportedOutputFormat
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                        "unknown",
	KindIO:                             "io",
	KindInvalidFileFormat:              "invalid_file_format",
	KindMissingRequiredHeader:          "missing_required_header",
	KindMalformedDataSection:           "malformed_data_section",
	KindInvalidHeaderFormat:            "invalid_header_format",
	KindUnknownVariable:                "unknown_variable",
	KindMissingRequiredVariable:        "missing_required_variable",
	KindInvalidDeviceConfigCombination: "invalid_device_config_combination",
	KindDataTypeError:                  "data_type_error",
	KindUnsupportedOutputFormat:        "unsupported_output_format",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrIO                             = &Error{Kind: KindIO}
	ErrInvalidFileFormat              = &Error{Kind: KindInvalidFileFormat}
	ErrMissingRequiredHeader          = &Error{Kind: KindMissingRequiredHeader}
	ErrMalformedDataSection           = &Error{Kind: KindMalformedDataSection}
	ErrInvalidHeaderFormat            = &Error{Kind: KindInvalidHeaderFormat}
	ErrUnknownVariable                = &Error{Kind: KindUnknownVariable}
	ErrMissingRequiredVariable        = &Error{Kind: KindMissingRequiredVariable}
	ErrInvalidDeviceConfigCombination = &Error{Kind: KindInvalidDeviceConfigCombination}
	ErrDataTypeError                  = &Error{Kind: KindDataTypeError}
	ErrUnsupportedOutputFormat        = &Error{Kind: KindUnsupportedOutputFormat}
)

// Error is a parse failure. Only the fields relevant to Kind are set.
type Error struct {
	Kind ErrorKind

	Device   string   // InvalidFileFormat, InvalidDeviceConfigCombination
	Config   string   // MissingRequiredVariable, InvalidDeviceConfigCombination
	Field    string   // MissingRequiredHeader
	Variable string   // UnknownVariable, MissingRequiredVariable (first missing), DataTypeError
	Missing  []string // MissingRequiredVariable: every missing name in declared order

	Expected int // MalformedDataSection: cell count of the name row
	Found    int // MalformedDataSection: cell count of the offending line
	Line     int // MalformedDataSection: 1-based line number, 0 if unknown

	Value        string // DataTypeError
	ExpectedType string // DataTypeError
	Requested    string // UnsupportedOutputFormat
	Message      string // InvalidHeaderFormat

	Path string // IO
	Err  error  // IO, InvalidDeviceConfigCombination: underlying cause
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIO:
		if e.Path != "" {
			return fmt.Sprintf("io error reading %s: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("io error: %v", e.Err)
	case KindInvalidFileFormat:
		return fmt.Sprintf("invalid file format for device %s", e.Device)
	case KindMissingRequiredHeader:
		return fmt.Sprintf("missing required header field: %s", e.Field)
	case KindMalformedDataSection:
		if e.Line > 0 {
			return fmt.Sprintf("malformed data section: expected %d columns, found %d (line %d)", e.Expected, e.Found, e.Line)
		}
		return fmt.Sprintf("malformed data section: expected %d columns, found %d", e.Expected, e.Found)
	case KindInvalidHeaderFormat:
		return fmt.Sprintf("invalid header format: %s", e.Message)
	case KindUnknownVariable:
		return fmt.Sprintf("unknown variable: %q", e.Variable)
	case KindMissingRequiredVariable:
		if len(e.Missing) > 1 {
			return fmt.Sprintf("missing required variables %s for config '%s'", quoteAll(e.Missing), e.Config)
		}
		return fmt.Sprintf("missing required variable '%s' for config '%s'", e.Variable, e.Config)
	case KindInvalidDeviceConfigCombination:
		if e.Err != nil {
			return fmt.Sprintf("invalid device/config combination: device=%q, config=%q: %v", e.Device, e.Config, e.Err)
		}
		return fmt.Sprintf("invalid device/config combination: device=%q, config=%q", e.Device, e.Config)
	case KindDataTypeError:
		return fmt.Sprintf("data type error for variable '%s': cannot convert '%s' to %s", e.Variable, e.Value, e.ExpectedType)
	case KindUnsupportedOutputFormat:
		return fmt.Sprintf("unsupported output format %q", e.Requested)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "unknown parse error"
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so the Err* sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}

func ioError(path string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Err: err}
}

func invalidFileFormat(device string) *Error {
	return &Error{Kind: KindInvalidFileFormat, Device: device}
}

func missingRequiredHeader(field string) *Error {
	return &Error{Kind: KindMissingRequiredHeader, Field: field}
}

func malformedDataSection(expected, found, line int) *Error {
	return &Error{Kind: KindMalformedDataSection, Expected: expected, Found: found, Line: line}
}

func invalidHeaderFormat(msg string) *Error {
	return &Error{Kind: KindInvalidHeaderFormat, Message: msg}
}

func unknownVariable(name string) *Error {
	return &Error{Kind: KindUnknownVariable, Variable: name}
}

func missingRequiredVariables(config string, missing []string) *Error {
	return &Error{Kind: KindMissingRequiredVariable, Config: config, Variable: missing[0], Missing: missing}
}

func invalidCombination(device, config string) *Error {
	return &Error{Kind: KindInvalidDeviceConfigCombination, Device: device, Config: config}
}

func unresolvedConfiguration(config string, cause error) *Error {
	return &Error{Kind: KindInvalidDeviceConfigCombination, Config: config, Err: cause}
}

func dataTypeError(variable, value string, expected DataType) *Error {
	return &Error{Kind: KindDataTypeError, Variable: variable, Value: value, ExpectedType: expected.String()}
}

// UnsupportedOutputFormat builds the error an encoder returns for an unknown format name.
func UnsupportedOutputFormat(requested string) *Error {
	return &Error{Kind: KindUnsupportedOutputFormat, Requested: requested}
}

// HostCategory groups kinds by how a caller should react: retry or fix the
// path (io), fix the input or arguments (value), or report a bug (runtime).
// The CLI maps each category to an exit code.
type HostCategory string

const (
	CategoryIO      HostCategory = "io"
	CategoryValue   HostCategory = "value"
	CategoryRuntime HostCategory = "runtime"
)

var hostCategories = map[ErrorKind]HostCategory{
	KindIO:                             CategoryIO,
	KindInvalidFileFormat:              CategoryValue,
	KindMissingRequiredHeader:          CategoryValue,
	KindMalformedDataSection:           CategoryValue,
	KindInvalidHeaderFormat:            CategoryValue,
	KindUnknownVariable:                CategoryValue,
	KindMissingRequiredVariable:        CategoryValue,
	KindInvalidDeviceConfigCombination: CategoryValue,
	KindDataTypeError:                  CategoryValue,
	KindUnsupportedOutputFormat:        CategoryValue,
}

// CategoryOf maps an error to its host category.
// Errors outside the taxonomy are CategoryRuntime.
func CategoryOf(err error) HostCategory {
	if c, ok := hostCategories[KindOf(err)]; ok {
		return c
	}
	return CategoryRuntime
}
