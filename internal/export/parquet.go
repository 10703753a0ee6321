package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/licor/internal/core"
)

// Field metadata keys carried by every parquet column.
const (
	FieldName         = "licor.name"
	FieldUnits        = "licor.units"
	FieldCategory     = "licor.category"
	FieldLabel        = "licor.label"
	FieldDescription  = "licor.description"
	FieldDeclaredType = "licor.declared_type"
)

func arrowType(t core.DataType) arrow.DataType {
	switch t {
	case core.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case core.TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case core.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// Schema returns the arrow schema for ds. Dataset metadata becomes schema
// metadata in sorted key order.
func Schema(ds *core.Dataset) *arrow.Schema {
	fields := make([]arrow.Field, len(ds.Columns))
	for i, col := range ds.Columns {
		fields[i] = arrow.Field{
			Name:     col.Identifier,
			Type:     arrowType(col.Type),
			Nullable: true,
			Metadata: arrow.NewMetadata(
				[]string{FieldName, FieldUnits, FieldCategory, FieldLabel, FieldDescription, FieldDeclaredType},
				[]string{col.Name, col.Units, col.Category, col.Label, col.Description, col.Declared.String()},
			),
		}
	}

	keys := make([]string, 0, len(ds.Metadata))
	for k := range ds.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = ds.Metadata[k]
	}
	md := arrow.NewMetadata(keys, values)

	return arrow.NewSchema(fields, &md)
}

// Record builds an arrow record holding every column of ds.
// The caller must Release it.
func Record(mem memory.Allocator, ds *core.Dataset) arrow.Record {
	schema := Schema(ds)
	cols := make([]arrow.Array, len(ds.Columns))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()

	for i := range ds.Columns {
		cols[i] = buildArray(mem, &ds.Columns[i])
	}
	return array.NewRecord(schema, cols, int64(ds.Rows))
}

func buildArray(mem memory.Allocator, col *core.Column) arrow.Array {
	switch col.Type {
	case core.TypeFloat:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.Reserve(len(col.Floats))
		for _, v := range col.Floats {
			if v.Valid {
				b.Append(v.Float64)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	case core.TypeInteger:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.Reserve(len(col.Integers))
		for _, v := range col.Integers {
			if v.Valid {
				b.Append(v.Int64)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	case core.TypeBoolean:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.Reserve(len(col.Booleans))
		for _, v := range col.Booleans {
			if v.Valid {
				b.Append(v.Bool)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	default:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.Reserve(len(col.Texts))
		for _, v := range col.Texts {
			if v.Valid {
				b.Append(v.String)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	}
}

func writeParquet(w io.Writer, ds *core.Dataset, codec compress.Compression) error {
	mem := memory.NewGoAllocator()
	rec := Record(mem, ds)
	defer rec.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithAllocator(mem),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write record to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}
