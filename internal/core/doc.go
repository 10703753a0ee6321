// Package core parses LI-COR instrument logs into typed columnar datasets.
//
// This package holds all of the parsing logic and is independent of any
// output format or command-line surface. It can be used by the CLI, the
// batch driver or tests without modification.
//
// # Pipeline
//
// A parse runs these stages in order and stops at the first failure:
//
//  1. [CheckCombination] rejects an unsupported device/configuration pair
//     before any file is opened
//  2. [ParseRaw] decodes the bytes and splits header, column rows and data rows
//  3. [Device.ValidateHeader] checks the device-identifying header fields
//  4. [Configuration.ValidateColumns] checks the required variables
//  5. [Convert] types each column from the [Registry]
//  6. [ResolveIdentifiers] assigns unique column identifiers
//
// The usual entry point is [ParseFile], or a [Parser] when many files share a
// pairing:
//
//	p, err := core.NewParser("6800", "fluorometer", core.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//	ds, err := p.ParseFile("2024-06-01-leaf3.txt")
//
// # Variable Registry
//
// Known variables come from a versioned TOML source embedded in the binary
// and loaded once per process by [DefaultRegistry]. Tests can build small
// registries with [NewRegistry]. A registry is never mutated after
// construction, so concurrent parses share it without locking.
//
// # Type Conversion
//
// Each column is parsed as its declared type. If any non-null cell fails,
// the whole column falls back to text so a column always has one type.
// [ParseOptions.Strict] turns that fallback into a [KindDataTypeError].
//
// # Error Handling
//
// Every failure is a [*Error] with an [ErrorKind]. [MapError] turns it into a
// user message with a stable code:
//
//   - FILE001-FILE002: File errors (read failure, layout)
//   - HDR001-HDR002: Header errors (wrong device, missing field)
//   - DATA001-DATA002: Data errors (column count, strict type)
//   - VAR001-VAR002: Variable errors (unknown, missing required)
//   - CFG001, OUT001: Setup errors (pairing, output format)
package core
