// Package export writes parsed datasets to columnar and text files.
//
// Three formats are supported:
//
//   - parquet: typed columns with the dataset metadata stored as file-level
//     key/value metadata and per-column field metadata
//   - csv: one header row of identifiers, nulls as empty cells
//   - json: a single object with metadata, column descriptions and rows
//
// Output is deterministic: the same dataset always encodes to the same bytes
// for csv and json, and to the same schema, metadata and values for parquet.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/parquet/compress"

	"github.com/JonMunkholm/licor/internal/core"
)

// Format is an output encoding.
type Format int

const (
	FormatParquet Format = iota
	FormatCSV
	FormatJSON
)

var formatNames = map[Format]string{
	FormatParquet: "parquet",
	FormatCSV:     "csv",
	FormatJSON:    "json",
}

// String returns the format name accepted by ParseFormat.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat converts a format name. Unknown names fail with
// core.KindUnsupportedOutputFormat.
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == key {
			return f, nil
		}
	}
	return 0, core.UnsupportedOutputFormat(s)
}

// Formats returns the supported format names.
func Formats() []string {
	return []string{"parquet", "csv", "json"}
}

var compressions = map[string]compress.Compression{
	"none":         compress.Codecs.Uncompressed,
	"uncompressed": compress.Codecs.Uncompressed,
	"snappy":       compress.Codecs.Snappy,
	"gzip":         compress.Codecs.Gzip,
	"zstd":         compress.Codecs.Zstd,
	"brotli":       compress.Codecs.Brotli,
}

// ParseCompression converts a parquet codec name.
func ParseCompression(s string) (compress.Compression, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return compress.Codecs.Snappy, nil
	}
	c, ok := compressions[key]
	if !ok {
		return compress.Codecs.Uncompressed, fmt.Errorf("unknown compression %q (want none, snappy, gzip, zstd or brotli)", s)
	}
	return c, nil
}

// Options controls encoding.
type Options struct {
	// Compression is the parquet codec name. Empty means snappy.
	// Ignored by csv and json.
	Compression string
}

// Write encodes ds to w.
func Write(w io.Writer, ds *core.Dataset, f Format, opts Options) error {
	switch f {
	case FormatParquet:
		codec, err := ParseCompression(opts.Compression)
		if err != nil {
			return err
		}
		return writeParquet(w, ds, codec)
	case FormatCSV:
		return writeCSV(w, ds)
	case FormatJSON:
		return writeJSON(w, ds)
	default:
		return core.UnsupportedOutputFormat(f.String())
	}
}

// WriteFile encodes ds to path. The file is written to a temporary name in
// the same directory and renamed into place, so a failed write never leaves
// a partial output behind.
func WriteFile(path string, ds *core.Dataset, f Format, opts Options) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	// The parquet writer closes its sink if it can; hide Close so the file
	// is closed exactly once, here.
	if err := Write(struct{ io.Writer }{tmp}, ds, f, opts); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output file: %w", err)
	}
	return nil
}

// OutputPath returns the output file for input in dir: the input's base name
// with its extension replaced by the format's.
func OutputPath(dir, input string, f Format) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+f.Extension())
}
