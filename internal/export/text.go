package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/licor/internal/core"
)

func writeCSV(w io.Writer, ds *core.Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ds.Identifiers()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(ds.Columns))
	for r := 0; r < ds.Rows; r++ {
		for c := range ds.Columns {
			row[c] = formatCell(&ds.Columns[c], r)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatCell renders one value as text; null is empty.
func formatCell(col *core.Column, i int) string {
	switch v := col.Value(i).(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

type jsonColumn struct {
	Name         string `json:"name"`
	Identifier   string `json:"identifier"`
	Category     string `json:"category,omitempty"`
	Units        string `json:"units,omitempty"`
	Label        string `json:"label,omitempty"`
	Description  string `json:"description,omitempty"`
	Type         string `json:"type"`
	DeclaredType string `json:"declared_type"`
}

type jsonDataset struct {
	Metadata map[string]string `json:"metadata"`
	Columns  []jsonColumn      `json:"columns"`
	Rows     [][]any           `json:"rows"`
}

func writeJSON(w io.Writer, ds *core.Dataset) error {
	out := jsonDataset{
		Metadata: ds.Metadata,
		Columns:  make([]jsonColumn, len(ds.Columns)),
		Rows:     make([][]any, ds.Rows),
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}

	for i, col := range ds.Columns {
		out.Columns[i] = jsonColumn{
			Name:         col.Name,
			Identifier:   col.Identifier,
			Category:     col.Category,
			Units:        col.Units,
			Label:        col.Label,
			Description:  col.Description,
			Type:         col.Type.String(),
			DeclaredType: col.Declared.String(),
		}
	}
	for r := 0; r < ds.Rows; r++ {
		row := make([]any, len(ds.Columns))
		for c := range ds.Columns {
			row[c] = ds.Columns[c].Value(r)
		}
		out.Rows[r] = row
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
