package core

// input.go normalizes raw log bytes to UTF-8 text before parsing.
//
// Consoles write UTF-8, but logs that passed through older desktop tools
// are often re-saved as Windows-1252, which turns unit symbols like µ, ² and °
// into single high bytes. Handled here:
//
//   - UTF-8 BOM (0xEF 0xBB 0xBF) is stripped
//   - bytes that are not valid UTF-8 are decoded as Windows-1252
//   - CRLF line endings are accepted by the line splitter

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// MaxInputBytes bounds how much ReadInput will buffer for one file.
const MaxInputBytes int64 = 512 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeInput returns the text content of a log file.
func DecodeInput(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return string(decoded)
}

// ReadInput reads at most limit bytes from r. A limit <= 0 means
// MaxInputBytes.
func ReadInput(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxInputBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("input exceeds %d bytes", limit)
	}
	return data, nil
}

// splitLines splits text on '\n' and drops a trailing '\r' from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// splitFields splits a line on TAB and trims each cell.
func splitFields(line string) []string {
	fields := strings.Split(line, "\t")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}
