package core

// # Error Codes Reference
//
// User-facing messages for parse failures. Each code is stable so users can
// quote it when reporting a problem file.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File could not be read
//	          Action: Check the path and file permissions
//	FILE002 - File layout is not a LI-COR log
//	          Action: Export the log again from the console
//
// # Header Errors (HDR001-HDR099)
//
//	HDR001 - Header is not from the selected device
//	         Action: Check the --device flag matches the instrument
//	HDR002 - A required header field is missing
//	         Action: Re-export the file with the full header
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - A data line has the wrong number of columns
//	          Action: Look for truncated or hand-edited lines
//	DATA002 - A value does not match its variable's type (strict mode)
//	          Action: Disable strict mode or fix the value
//
// # Variable Errors (VAR001-VAR099)
//
//	VAR001 - Column is not a known variable
//	         Action: Update the variable definitions or remove the column
//	VAR002 - Configuration requires variables the file lacks
//	         Action: Choose the configuration the log was recorded with
//
// # Setup Errors (CFG001-CFG099)
//
//	CFG001 - Device and configuration cannot be combined
//	         Action: Pick a supported pairing (see `licor convert -h`)
//	OUT001 - Output format is not supported
//	         Action: Use parquet, csv or json
//
// # Default Error (ERR000)
//
// Fallback for errors outside the taxonomy. Check the log for the original error.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// kindMessages maps each error kind to its user message.
var kindMessages = map[ErrorKind]UserMessage{
	KindIO: {
		Message: "The file could not be read",
		Action:  "Check the path and file permissions",
		Code:    "FILE001",
	},
	KindInvalidHeaderFormat: {
		Message: "The file layout is not a LI-COR log",
		Action:  "Export the log again from the console",
		Code:    "FILE002",
	},
	KindInvalidFileFormat: {
		Message: "The header does not match the selected device",
		Action:  "Check the --device flag matches the instrument",
		Code:    "HDR001",
	},
	KindMissingRequiredHeader: {
		Message: "A required header field is missing",
		Action:  "Re-export the file with the full header",
		Code:    "HDR002",
	},
	KindMalformedDataSection: {
		Message: "A data line has the wrong number of columns",
		Action:  "Look for truncated or hand-edited lines",
		Code:    "DATA001",
	},
	KindDataTypeError: {
		Message: "A value does not match its variable's type",
		Action:  "Disable strict mode or correct the value",
		Code:    "DATA002",
	},
	KindUnknownVariable: {
		Message: "The file contains a column that is not a known variable",
		Action:  "Update the variable definitions or remove the column",
		Code:    "VAR001",
	},
	KindMissingRequiredVariable: {
		Message: "The file is missing variables required by the configuration",
		Action:  "Choose the configuration the log was recorded with",
		Code:    "VAR002",
	},
	KindInvalidDeviceConfigCombination: {
		Message: "This device and configuration cannot be combined",
		Action:  "Pick a supported device/configuration pairing",
		Code:    "CFG001",
	},
	KindUnsupportedOutputFormat: {
		Message: "The output format is not supported",
		Action:  "Use parquet, csv or json",
		Code:    "OUT001",
	},
}

// defaultMessage is returned when no specific kind matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for details",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
// Errors outside the taxonomy get the ERR000 default.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if msg, ok := kindMessages[KindOf(err)]; ok {
		return msg
	}
	return defaultMessage
}

// FormatUserError renders a one-line message for terminals:
//
//	VAR001: The file contains a column that is not a known variable (unknown variable: "Foo"). Update the variable definitions or remove the column
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}
	msg := MapError(err)
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (%s)", msg.Code, msg.Message, err.Error())
	if msg.Action != "" {
		b.WriteString(". ")
		b.WriteString(msg.Action)
	}
	return b.String()
}
