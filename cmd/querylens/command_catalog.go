package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	querylens "github.com/querylens/querylens"
	"github.com/querylens/querylens/driver"
)

// DatabasesCmd lists the databases visible to the connection.
type DatabasesCmd struct {
	Format string `help:"Output format (table, json)" default:"table"`
}

func (cmd *DatabasesCmd) Run(ctx *Context) error {
	return withDriver(ctx, func(runCtx context.Context, d driver.Driver) error {
		databases, err := d.GetDatabases(runCtx)
		if err != nil {
			return err
		}

		if cmd.Format == "json" {
			return printJSON(databases)
		}

		t := newListTable("Name", "Owner", "Charset")
		for _, db := range databases {
			t.AppendRow(table.Row{db.Name, db.Owner, db.Charset})
		}
		t.Render()
		return nil
	})
}

// SchemasCmd lists the schemas (namespaces) of the connected database.
type SchemasCmd struct {
	Format string `help:"Output format (table, json)" default:"table"`
}

func (cmd *SchemasCmd) Run(ctx *Context) error {
	return withDriver(ctx, func(runCtx context.Context, d driver.Driver) error {
		schemas, err := d.GetSchemas(runCtx)
		if err != nil {
			return err
		}

		if cmd.Format == "json" {
			return printJSON(schemas)
		}

		t := newListTable("Name", "Owner")
		for _, s := range schemas {
			t.AppendRow(table.Row{s.Name, s.Owner})
		}
		t.Render()
		return nil
	})
}

// TablesCmd lists tables and views of one schema.
type TablesCmd struct {
	Schema string `arg:"" optional:"" help:"Schema name (defaults to the connection's default schema)"`
	Format string `help:"Output format (table, json)" default:"table"`
}

func (cmd *TablesCmd) Run(ctx *Context) error {
	return withDriver(ctx, func(runCtx context.Context, d driver.Driver) error {
		schema, err := resolveSchema(runCtx, d, cmd.Schema)
		if err != nil {
			return err
		}

		tables, err := d.GetTables(runCtx, schema)
		if err != nil {
			return err
		}

		if cmd.Format == "json" {
			return printJSON(tables)
		}

		t := newListTable("Name", "Type", "Rows", "Comment")
		for _, tbl := range tables {
			t.AppendRow(table.Row{tbl.Name, tbl.Type, tbl.RowCount, tbl.Comment})
		}
		t.Render()
		return nil
	})
}

// DescribeCmd shows the full column and index layout of one table.
type DescribeCmd struct {
	Table  string `arg:"" help:"Table name"`
	Schema string `help:"Schema name (defaults to the connection's default schema)" short:"s"`
	Format string `help:"Output format (table, json)" default:"table"`
}

func (cmd *DescribeCmd) Run(ctx *Context) error {
	return withDriver(ctx, func(runCtx context.Context, d driver.Driver) error {
		schema, err := resolveSchema(runCtx, d, cmd.Schema)
		if err != nil {
			return err
		}

		ts, err := d.GetTableSchema(runCtx, schema, cmd.Table)
		if err != nil {
			return err
		}

		if cmd.Format == "json" {
			return printJSON(ts)
		}

		color.Cyan("%s.%s", ts.Schema, ts.Name)
		if ts.Comment != "" {
			fmt.Println(ts.Comment)
		}

		cols := newListTable("#", "Column", "Type", "Nullable", "Default", "PK", "Comment")
		for _, col := range ts.Columns {
			def := ""
			if col.DefaultValue != nil {
				def = *col.DefaultValue
			}
			cols.AppendRow(table.Row{
				col.OrdinalPosition, col.Name, col.DataType,
				col.Nullable, def, col.IsPrimaryKey, col.Comment,
			})
		}
		cols.Render()

		if len(ts.Indexes) > 0 {
			idx := newListTable("Index", "Columns", "Unique", "Primary", "Type")
			for _, ix := range ts.Indexes {
				idx.AppendRow(table.Row{
					ix.Name, strings.Join(ix.Columns, ", "), ix.IsUnique, ix.IsPrimary, ix.Type,
				})
			}
			idx.Render()
		}

		return nil
	})
}

func withDriver(ctx *Context, fn func(context.Context, driver.Driver) error) error {
	d, runCtx, cancel, err := openDriver(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	defer d.Close()

	return fn(runCtx, d)
}

// resolveSchema fills in the dialect's conventional default namespace when
// the user did not name one. MySQL has no fixed name; its current database
// is whatever GetSchemas reports.
func resolveSchema(ctx context.Context, d driver.Driver, schema string) (string, error) {
	if schema != "" {
		return schema, nil
	}

	switch d.Dialect() {
	case querylens.DialectPostgres:
		return "public", nil
	case querylens.DialectSQLite:
		return "main", nil
	case querylens.DialectSQLServer:
		return "dbo", nil
	case querylens.DialectMongoDB:
		return "public", nil
	default:
		schemas, err := d.GetSchemas(ctx)
		if err != nil {
			return "", err
		}
		if len(schemas) == 0 {
			return "", querylens.NewError(querylens.ErrorKindInvalidInput, "", "no schema selected; pass one explicitly")
		}
		return schemas[0].Name, nil
	}
}

func newListTable(headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)

	return t
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
