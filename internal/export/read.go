package export

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/licor/internal/core"
)

// ReadParquetFile loads a file written by Write back into a Dataset.
func ReadParquetFile(ctx context.Context, path string) (*core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	return ReadParquet(ctx, f)
}

// ReadParquet loads a parquet stream written by Write. Column names, units,
// categories and declared types come from the field metadata; files without
// it fall back to the field name and the stored type.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker) (*core.Dataset, error) {
	pf, err := file.NewParquetReader(r, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	ds := &core.Dataset{
		Rows:     int(tbl.NumRows()),
		Metadata: make(map[string]string),
		Columns:  make([]core.Column, schema.NumFields()),
	}

	// Dataset metadata lives in the file footer; the arrow schema read back
	// does not carry it.
	kv := pf.MetaData().KeyValueMetadata()
	keys, values := kv.Keys(), kv.Values()
	for i, k := range keys {
		if strings.HasPrefix(k, "ARROW:") {
			continue
		}
		ds.Metadata[k] = values[i]
	}

	for i, field := range schema.Fields() {
		col, err := readColumn(field, tbl.Column(i).Data().Chunks(), ds.Rows)
		if err != nil {
			return nil, err
		}
		ds.Columns[i] = col
	}
	return ds, nil
}

func fieldMeta(f arrow.Field, key string) string {
	if idx := f.Metadata.FindKey(key); idx >= 0 {
		return f.Metadata.Values()[idx]
	}
	return ""
}

func readColumn(field arrow.Field, chunks []arrow.Array, rows int) (core.Column, error) {
	col := core.Column{
		Name:        fieldMeta(field, FieldName),
		Identifier:  field.Name,
		Category:    fieldMeta(field, FieldCategory),
		Units:       fieldMeta(field, FieldUnits),
		Label:       fieldMeta(field, FieldLabel),
		Description: fieldMeta(field, FieldDescription),
	}
	if col.Name == "" {
		col.Name = field.Name
	}

	switch field.Type.ID() {
	case arrow.FLOAT64:
		col.Type = core.TypeFloat
		col.Floats = make([]pgtype.Float8, 0, rows)
		for _, c := range chunks {
			a := c.(*array.Float64)
			for i := 0; i < a.Len(); i++ {
				col.Floats = append(col.Floats, pgtype.Float8{Float64: a.Value(i), Valid: a.IsValid(i)})
			}
		}
	case arrow.INT64:
		col.Type = core.TypeInteger
		col.Integers = make([]pgtype.Int8, 0, rows)
		for _, c := range chunks {
			a := c.(*array.Int64)
			for i := 0; i < a.Len(); i++ {
				col.Integers = append(col.Integers, pgtype.Int8{Int64: a.Value(i), Valid: a.IsValid(i)})
			}
		}
	case arrow.BOOL:
		col.Type = core.TypeBoolean
		col.Booleans = make([]pgtype.Bool, 0, rows)
		for _, c := range chunks {
			a := c.(*array.Boolean)
			for i := 0; i < a.Len(); i++ {
				col.Booleans = append(col.Booleans, pgtype.Bool{Bool: a.Value(i), Valid: a.IsValid(i)})
			}
		}
	case arrow.STRING:
		col.Type = core.TypeText
		col.Texts = make([]pgtype.Text, 0, rows)
		for _, c := range chunks {
			a := c.(*array.String)
			for i := 0; i < a.Len(); i++ {
				col.Texts = append(col.Texts, pgtype.Text{String: a.Value(i), Valid: a.IsValid(i)})
			}
		}
	default:
		return core.Column{}, fmt.Errorf("column %s: unsupported parquet type %s", field.Name, field.Type)
	}

	// Invalid slots hold zero values; normalize them so datasets compare equal.
	clearNulls(&col)

	col.Declared = col.Type
	if declared := fieldMeta(field, FieldDeclaredType); declared != "" {
		dt, err := core.ParseDataType(declared)
		if err != nil {
			return core.Column{}, fmt.Errorf("column %s: %w", field.Name, err)
		}
		col.Declared = dt
	}
	return col, nil
}

func clearNulls(col *core.Column) {
	for i := range col.Floats {
		if !col.Floats[i].Valid {
			col.Floats[i] = pgtype.Float8{}
		}
	}
	for i := range col.Integers {
		if !col.Integers[i].Valid {
			col.Integers[i] = pgtype.Int8{}
		}
	}
	for i := range col.Booleans {
		if !col.Booleans[i].Valid {
			col.Booleans[i] = pgtype.Bool{}
		}
	}
	for i := range col.Texts {
		if !col.Texts[i].Valid {
			col.Texts[i] = pgtype.Text{}
		}
	}
}
