package ddl

import (
	"fmt"
	"strings"

	querylens "github.com/querylens/querylens"
)

// sqlserverGenerator renders T-SQL DDL. Identifiers use bracket quoting,
// auto-increment is IDENTITY(1,1), the primary key is a named constraint
// (PK_<table>), column renames go through sp_rename, and default changes go
// through named default constraints (DF_<table>_<column>).
type sqlserverGenerator struct{}

func (g *sqlserverGenerator) Dialect() querylens.Dialect {
	return querylens.DialectSQLServer
}

func (g *sqlserverGenerator) quote(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (g *sqlserverGenerator) qualified(schema, name string) string {
	if schema == "" {
		schema = "dbo"
	}
	return g.quote(schema) + "." + g.quote(name)
}

func (g *sqlserverGenerator) typeName(t ColumnType) string {
	switch t.Kind {
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInteger:
		return "INT"
	case TypeBigInt:
		return "BIGINT"
	case TypeDecimal:
		if t.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale)
		}
		return "DECIMAL"
	case TypeReal:
		return "REAL"
	case TypeDoublePrecision:
		return "FLOAT"
	case TypeVarchar:
		if t.Length > 0 {
			return fmt.Sprintf("NVARCHAR(%d)", t.Length)
		}
		return "NVARCHAR(MAX)"
	case TypeChar:
		if t.Length > 0 {
			return fmt.Sprintf("NCHAR(%d)", t.Length)
		}
		return "NCHAR(1)"
	case TypeText:
		return "NVARCHAR(MAX)"
	case TypeBytea:
		return "VARBINARY(MAX)"
	case TypeBoolean:
		return "BIT"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeTimestamp:
		return "DATETIME2"
	case TypeTimestampTz:
		return "DATETIMEOFFSET"
	case TypeJSON, TypeJSONB:
		return "NVARCHAR(MAX)"
	case TypeUUID:
		return "UNIQUEIDENTIFIER"
	case TypeArray:
		return "NVARCHAR(MAX)"
	case TypeCustom:
		return t.Name
	default:
		return "NVARCHAR(MAX)"
	}
}

func (g *sqlserverGenerator) columnClause(col ColumnDefinition) string {
	var b strings.Builder
	b.WriteString(g.quote(col.Name))
	b.WriteString(" ")
	b.WriteString(g.typeName(col.Type))

	if col.AutoIncrement {
		b.WriteString(" IDENTITY(1,1)")
	}

	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}

	if col.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(*col.Default)
	}

	return b.String()
}

func (g *sqlserverGenerator) CreateTable(def *TableDefinition) (*Result, error) {
	if err := validateTable(def); err != nil {
		return nil, err
	}

	var clauses []string
	for _, col := range def.Columns {
		clauses = append(clauses, g.columnClause(col))
	}

	if pk := effectivePrimaryKey(def); len(pk) > 0 {
		clauses = append(clauses,
			"CONSTRAINT "+g.quote("PK_"+def.Name)+" PRIMARY KEY ("+strings.Join(quoteAll(g.quote, pk), ", ")+")")
	}

	for _, fk := range def.ForeignKeys {
		var fkc strings.Builder
		if fk.Name != "" {
			fkc.WriteString("CONSTRAINT ")
			fkc.WriteString(g.quote(fk.Name))
			fkc.WriteString(" ")
		}
		fkc.WriteString("FOREIGN KEY (")
		fkc.WriteString(strings.Join(quoteAll(g.quote, fk.Columns), ", "))
		fkc.WriteString(") REFERENCES ")
		fkc.WriteString(g.quote(fk.ReferencedTable))
		fkc.WriteString(" (")
		fkc.WriteString(strings.Join(quoteAll(g.quote, fk.ReferencedColumns), ", "))
		fkc.WriteString(")")
		fkc.WriteString(renderAction("ON DELETE", fk.OnDelete))
		fkc.WriteString(renderAction("ON UPDATE", fk.OnUpdate))
		clauses = append(clauses, fkc.String())
	}

	for _, uq := range def.Uniques {
		clause := "UNIQUE (" + strings.Join(quoteAll(g.quote, uq.Columns), ", ") + ")"
		if uq.Name != "" {
			clause = "CONSTRAINT " + g.quote(uq.Name) + " " + clause
		}
		clauses = append(clauses, clause)
	}

	for _, ck := range def.Checks {
		clause := "CHECK (" + ck.Expression + ")"
		if ck.Name != "" {
			clause = "CONSTRAINT " + g.quote(ck.Name) + " " + clause
		}
		clauses = append(clauses, clause)
	}

	table := g.qualified(def.Schema, def.Name)

	var b strings.Builder
	if def.IfNotExists {
		schema := def.Schema
		if schema == "" {
			schema = "dbo"
		}
		b.WriteString(fmt.Sprintf("IF OBJECT_ID(N'%s.%s', N'U') IS NULL\n",
			escapeLiteral(schema), escapeLiteral(def.Name)))
	}
	b.WriteString("CREATE TABLE ")
	b.WriteString(table)
	b.WriteString(" (\n  ")
	b.WriteString(strings.Join(clauses, ",\n  "))
	b.WriteString("\n)")

	return &Result{
		SQL:     []string{b.String()},
		Message: fmt.Sprintf("generated CREATE TABLE for %s", def.Name),
	}, nil
}

func (g *sqlserverGenerator) AlterTable(def *AlterTableDefinition) (*Result, error) {
	if err := validateAlter(def); err != nil {
		return nil, err
	}

	table := g.qualified(def.Schema, def.Name)
	prefix := "ALTER TABLE " + table + " "

	schema := def.Schema
	if schema == "" {
		schema = "dbo"
	}

	statements := make([]string, 0, len(def.Operations))
	for _, op := range def.Operations {
		switch op.Kind {
		case AlterAddColumn:
			statements = append(statements, prefix+"ADD "+g.columnClause(*op.Column))
		case AlterDropColumn:
			statements = append(statements, prefix+"DROP COLUMN "+g.quote(op.Name))
		case AlterRenameColumn:
			statements = append(statements, fmt.Sprintf("EXEC sp_rename N'%s.%s.%s', N'%s', 'COLUMN'",
				escapeLiteral(schema), escapeLiteral(def.Name), escapeLiteral(op.Name), escapeLiteral(op.NewName)))
		case AlterType:
			statements = append(statements, prefix+"ALTER COLUMN "+g.quote(op.Name)+" "+g.typeName(*op.Type))
		case AlterSetNotNull:
			if op.Type == nil {
				return nil, querylens.NewErrorf(querylens.ErrorKindInvalidInput,
					"sqlserver requires the column type to set NOT NULL on %q", op.Name)
			}
			statements = append(statements, prefix+"ALTER COLUMN "+g.quote(op.Name)+" "+g.typeName(*op.Type)+" NOT NULL")
		case AlterDropNotNull:
			if op.Type == nil {
				return nil, querylens.NewErrorf(querylens.ErrorKindInvalidInput,
					"sqlserver requires the column type to drop NOT NULL on %q", op.Name)
			}
			statements = append(statements, prefix+"ALTER COLUMN "+g.quote(op.Name)+" "+g.typeName(*op.Type)+" NULL")
		case AlterSetDefault:
			statements = append(statements,
				prefix+"ADD CONSTRAINT "+g.quote("DF_"+def.Name+"_"+op.Name)+" DEFAULT "+*op.Default+" FOR "+g.quote(op.Name))
		case AlterDropDefault:
			statements = append(statements,
				prefix+"DROP CONSTRAINT "+g.quote("DF_"+def.Name+"_"+op.Name))
		}
	}

	return &Result{
		SQL:     statements,
		Message: fmt.Sprintf("generated %d ALTER TABLE statement(s) for %s", len(statements), def.Name),
	}, nil
}

func (g *sqlserverGenerator) DropTable(def *DropTableDefinition) (*Result, error) {
	if err := validateDrop(def); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("DROP TABLE ")
	if def.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(g.qualified(def.Schema, def.Name))

	msg := fmt.Sprintf("generated DROP TABLE for %s", def.Name)
	if def.Cascade {
		msg += " (CASCADE is not supported by sqlserver; dependent objects are not dropped)"
	}

	return &Result{
		SQL:     []string{b.String()},
		Message: msg,
	}, nil
}
