package ddl

import (
	"fmt"
	"strings"

	querylens "github.com/querylens/querylens"
)

// sqliteGenerator renders SQLite DDL. AUTOINCREMENT only exists inline on a
// single-column INTEGER PRIMARY KEY, so that case collapses the table-level
// key into the column clause. Column type changes, not-null toggles, and
// default changes are outside ALTER TABLE's grammar and are rejected as
// invalid input rather than silently skipped. Comments are not representable
// and are dropped.
type sqliteGenerator struct{}

func (g *sqliteGenerator) Dialect() querylens.Dialect {
	return querylens.DialectSQLite
}

func (g *sqliteGenerator) quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (g *sqliteGenerator) typeName(t ColumnType) string {
	switch t.Kind {
	case TypeSmallInt, TypeInteger, TypeBigInt:
		return "INTEGER"
	case TypeDecimal:
		return "NUMERIC"
	case TypeReal, TypeDoublePrecision:
		return "REAL"
	case TypeVarchar, TypeChar, TypeText:
		return "TEXT"
	case TypeBytea:
		return "BLOB"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeTimestamp, TypeTimestampTz:
		return "DATETIME"
	case TypeJSON, TypeJSONB:
		return "TEXT"
	case TypeUUID:
		return "TEXT"
	case TypeArray:
		return "TEXT"
	case TypeCustom:
		return t.Name
	default:
		return "TEXT"
	}
}

func (g *sqliteGenerator) columnClause(col ColumnDefinition, inlinePK bool) string {
	var b strings.Builder
	b.WriteString(g.quote(col.Name))
	b.WriteString(" ")
	b.WriteString(g.typeName(col.Type))

	if inlinePK {
		b.WriteString(" PRIMARY KEY AUTOINCREMENT")
	}

	if !col.Nullable && !inlinePK {
		b.WriteString(" NOT NULL")
	}

	if col.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(*col.Default)
	}

	return b.String()
}

func (g *sqliteGenerator) CreateTable(def *TableDefinition) (*Result, error) {
	if err := validateTable(def); err != nil {
		return nil, err
	}

	pk := effectivePrimaryKey(def)

	// AUTOINCREMENT must be a single-column inline INTEGER PRIMARY KEY.
	autoIncColumn := ""
	for _, col := range def.Columns {
		if col.AutoIncrement {
			autoIncColumn = col.Name
		}
	}
	if autoIncColumn != "" && (len(pk) != 1 || pk[0] != autoIncColumn) {
		return nil, querylens.NewErrorf(querylens.ErrorKindInvalidInput,
			"sqlite AUTOINCREMENT requires %q to be the sole primary key column", autoIncColumn)
	}
	inlinePK := autoIncColumn != ""

	var clauses []string
	for _, col := range def.Columns {
		clauses = append(clauses, g.columnClause(col, inlinePK && col.Name == autoIncColumn))
	}

	if len(pk) > 0 && !inlinePK {
		clauses = append(clauses, "PRIMARY KEY ("+strings.Join(quoteAll(g.quote, pk), ", ")+")")
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

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if def.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(g.quote(def.Name))
	b.WriteString(" (\n  ")
	b.WriteString(strings.Join(clauses, ",\n  "))
	b.WriteString("\n)")

	return &Result{
		SQL:     []string{b.String()},
		Message: fmt.Sprintf("generated CREATE TABLE for %s", def.Name),
	}, nil
}

func (g *sqliteGenerator) AlterTable(def *AlterTableDefinition) (*Result, error) {
	if err := validateAlter(def); err != nil {
		return nil, err
	}

	prefix := "ALTER TABLE " + g.quote(def.Name) + " "

	statements := make([]string, 0, len(def.Operations))
	for _, op := range def.Operations {
		switch op.Kind {
		case AlterAddColumn:
			statements = append(statements, prefix+"ADD COLUMN "+g.columnClause(*op.Column, false))
		case AlterDropColumn:
			statements = append(statements, prefix+"DROP COLUMN "+g.quote(op.Name))
		case AlterRenameColumn:
			statements = append(statements, prefix+"RENAME COLUMN "+g.quote(op.Name)+" TO "+g.quote(op.NewName))
		case AlterType, AlterSetNotNull, AlterDropNotNull, AlterSetDefault, AlterDropDefault:
			return nil, querylens.NewErrorf(querylens.ErrorKindInvalidInput,
				"sqlite ALTER TABLE does not support %s; recreate the table instead", op.Kind)
		}
	}

	return &Result{
		SQL:     statements,
		Message: fmt.Sprintf("generated %d ALTER TABLE statement(s) for %s", len(statements), def.Name),
	}, nil
}

func (g *sqliteGenerator) DropTable(def *DropTableDefinition) (*Result, error) {
	if err := validateDrop(def); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("DROP TABLE ")
	if def.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(g.quote(def.Name))

	msg := fmt.Sprintf("generated DROP TABLE for %s", def.Name)
	if def.Cascade {
		msg += " (CASCADE is not supported by sqlite; dependent objects are not dropped)"
	}

	return &Result{
		SQL:     []string{b.String()},
		Message: msg,
	}, nil
}
