package ddl

import (
	"fmt"
	"strings"

	querylens "github.com/querylens/querylens"
)

// postgresGenerator renders PostgreSQL DDL. Identifiers are double-quoted,
// auto-increment columns become the serial family, the primary key is always
// a separate table-level clause, and comments are emitted out of line via
// COMMENT ON statements.
type postgresGenerator struct{}

func (g *postgresGenerator) Dialect() querylens.Dialect {
	return querylens.DialectPostgres
}

func (g *postgresGenerator) quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (g *postgresGenerator) qualified(schema, name string) string {
	if schema != "" {
		return g.quote(schema) + "." + g.quote(name)
	}
	return g.quote(name)
}

func (g *postgresGenerator) typeName(t ColumnType) string {
	switch t.Kind {
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInteger:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeDecimal:
		if t.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d, %d)", t.Precision, t.Scale)
		}
		return "NUMERIC"
	case TypeReal:
		return "REAL"
	case TypeDoublePrecision:
		return "DOUBLE PRECISION"
	case TypeVarchar:
		if t.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", t.Length)
		}
		return "VARCHAR"
	case TypeChar:
		if t.Length > 0 {
			return fmt.Sprintf("CHAR(%d)", t.Length)
		}
		return "CHAR"
	case TypeText:
		return "TEXT"
	case TypeBytea:
		return "BYTEA"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeTimestampTz:
		return "TIMESTAMPTZ"
	case TypeJSON:
		return "JSON"
	case TypeJSONB:
		return "JSONB"
	case TypeUUID:
		return "UUID"
	case TypeArray:
		if t.Elem != nil {
			return g.typeName(*t.Elem) + "[]"
		}
		return "TEXT[]"
	case TypeCustom:
		return t.Name
	default:
		return "TEXT"
	}
}

// serialName maps an integer type to its auto-increment serial equivalent.
func (g *postgresGenerator) serialName(t ColumnType) string {
	switch t.Kind {
	case TypeSmallInt:
		return "SMALLSERIAL"
	case TypeBigInt:
		return "BIGSERIAL"
	default:
		return "SERIAL"
	}
}

func (g *postgresGenerator) columnClause(col ColumnDefinition) string {
	var b strings.Builder
	b.WriteString(g.quote(col.Name))
	b.WriteString(" ")

	if col.AutoIncrement {
		b.WriteString(g.serialName(col.Type))
	} else {
		b.WriteString(g.typeName(col.Type))
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

func (g *postgresGenerator) CreateTable(def *TableDefinition) (*Result, error) {
	if err := validateTable(def); err != nil {
		return nil, err
	}

	table := g.qualified(def.Schema, def.Name)

	var clauses []string
	for _, col := range def.Columns {
		clauses = append(clauses, g.columnClause(col))
	}

	if pk := effectivePrimaryKey(def); len(pk) > 0 {
		clauses = append(clauses, "PRIMARY KEY ("+strings.Join(quoteAll(g.quote, pk), ", ")+")")
	}

	for _, fk := range def.ForeignKeys {
		clauses = append(clauses, g.foreignKeyClause(fk))
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

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if def.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(table)
	b.WriteString(" (\n  ")
	b.WriteString(strings.Join(clauses, ",\n  "))
	b.WriteString("\n)")

	statements := []string{b.String()}

	if def.Comment != "" {
		statements = append(statements,
			fmt.Sprintf("COMMENT ON TABLE %s IS '%s'", table, escapeLiteral(def.Comment)))
	}
	for _, col := range def.Columns {
		if col.Comment != "" {
			statements = append(statements,
				fmt.Sprintf("COMMENT ON COLUMN %s.%s IS '%s'", table, g.quote(col.Name), escapeLiteral(col.Comment)))
		}
	}

	return &Result{
		SQL:     statements,
		Message: fmt.Sprintf("generated CREATE TABLE for %s", def.Name),
	}, nil
}

func (g *postgresGenerator) foreignKeyClause(fk ForeignKeyConstraint) string {
	var b strings.Builder
	if fk.Name != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(g.quote(fk.Name))
		b.WriteString(" ")
	}
	b.WriteString("FOREIGN KEY (")
	b.WriteString(strings.Join(quoteAll(g.quote, fk.Columns), ", "))
	b.WriteString(") REFERENCES ")
	b.WriteString(g.quote(fk.ReferencedTable))
	b.WriteString(" (")
	b.WriteString(strings.Join(quoteAll(g.quote, fk.ReferencedColumns), ", "))
	b.WriteString(")")
	b.WriteString(renderAction("ON DELETE", fk.OnDelete))
	b.WriteString(renderAction("ON UPDATE", fk.OnUpdate))
	return b.String()
}

func (g *postgresGenerator) AlterTable(def *AlterTableDefinition) (*Result, error) {
	if err := validateAlter(def); err != nil {
		return nil, err
	}

	table := g.qualified(def.Schema, def.Name)
	prefix := "ALTER TABLE " + table + " "

	statements := make([]string, 0, len(def.Operations))
	for _, op := range def.Operations {
		switch op.Kind {
		case AlterAddColumn:
			statements = append(statements, prefix+"ADD COLUMN "+g.columnClause(*op.Column))
		case AlterDropColumn:
			statements = append(statements, prefix+"DROP COLUMN "+g.quote(op.Name))
		case AlterRenameColumn:
			statements = append(statements, prefix+"RENAME COLUMN "+g.quote(op.Name)+" TO "+g.quote(op.NewName))
		case AlterType:
			statements = append(statements, prefix+"ALTER COLUMN "+g.quote(op.Name)+" TYPE "+g.typeName(*op.Type))
		case AlterSetNotNull:
			statements = append(statements, prefix+"ALTER COLUMN "+g.quote(op.Name)+" SET NOT NULL")
		case AlterDropNotNull:
			statements = append(statements, prefix+"ALTER COLUMN "+g.quote(op.Name)+" DROP NOT NULL")
		case AlterSetDefault:
			statements = append(statements, prefix+"ALTER COLUMN "+g.quote(op.Name)+" SET DEFAULT "+*op.Default)
		case AlterDropDefault:
			statements = append(statements, prefix+"ALTER COLUMN "+g.quote(op.Name)+" DROP DEFAULT")
		}
	}

	return &Result{
		SQL:     statements,
		Message: fmt.Sprintf("generated %d ALTER TABLE statement(s) for %s", len(statements), def.Name),
	}, nil
}

func (g *postgresGenerator) DropTable(def *DropTableDefinition) (*Result, error) {
	if err := validateDrop(def); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("DROP TABLE ")
	if def.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(g.qualified(def.Schema, def.Name))
	if def.Cascade {
		b.WriteString(" CASCADE")
	}

	return &Result{
		SQL:     []string{b.String()},
		Message: fmt.Sprintf("generated DROP TABLE for %s", def.Name),
	}, nil
}
