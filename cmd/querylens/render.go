package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/querylens/querylens/driver"
)

func isValidFormat(format string) bool {
	switch format {
	case "table", "json", "csv", "yaml":
		return true
	default:
		return false
	}
}

// renderResult writes a query result in the requested format. Statement
// results (rowsAffected set) are reported as a single line regardless of
// format except json, which emits the full result object.
func renderResult(w io.Writer, result *driver.QueryResult, format string) error {
	switch format {
	case "json":
		return renderJSON(w, result)
	case "csv":
		return renderCSV(w, result)
	case "yaml":
		return renderYAML(w, result)
	default:
		return renderTable(w, result)
	}
}

func renderTable(w io.Writer, result *driver.QueryResult) error {
	if result.RowsAffected != nil {
		_, err := fmt.Fprintf(w, "%d row(s) affected\n", *result.RowsAffected)
		return err
	}

	if len(result.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range result.Rows {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = renderCell(v)
		}
		t.AppendRow(cells)
	}

	t.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(result.Rows))
	return err
}

func renderCell(v any) string {
	if v == nil {
		return "NULL"
	}

	switch val := v.(type) {
	case string:
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func renderJSON(w io.Writer, result *driver.QueryResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func renderCSV(w io.Writer, result *driver.QueryResult) error {
	if result.RowsAffected != nil {
		_, err := fmt.Fprintf(w, "%d row(s) affected\n", *result.RowsAffected)
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(result.Columns); err != nil {
		return err
	}

	record := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i, v := range row {
			if v == nil {
				record[i] = ""
			} else {
				record[i] = renderCell(v)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func renderYAML(w io.Writer, result *driver.QueryResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
