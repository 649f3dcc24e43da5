package ddl

import (
	"fmt"
	"strings"

	querylens "github.com/querylens/querylens"
)

// mysqlGenerator renders MySQL DDL. Identifiers are backtick-quoted,
// auto-increment is the AUTO_INCREMENT column attribute, and comments are
// inline on the column or table since MySQL has no COMMENT ON statement.
// Not-null toggles restate the column type (MODIFY COLUMN grammar), so those
// operations require Type to be set.
type mysqlGenerator struct{}

func (g *mysqlGenerator) Dialect() querylens.Dialect {
	return querylens.DialectMySQL
}

func (g *mysqlGenerator) quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (g *mysqlGenerator) qualified(schema, name string) string {
	if schema != "" {
		return g.quote(schema) + "." + g.quote(name)
	}
	return g.quote(name)
}

func (g *mysqlGenerator) typeName(t ColumnType) string {
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
		return "FLOAT"
	case TypeDoublePrecision:
		return "DOUBLE"
	case TypeVarchar:
		if t.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", t.Length)
		}
		return "VARCHAR(255)"
	case TypeChar:
		if t.Length > 0 {
			return fmt.Sprintf("CHAR(%d)", t.Length)
		}
		return "CHAR(1)"
	case TypeText:
		return "TEXT"
	case TypeBytea:
		return "BLOB"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeTimestamp:
		return "DATETIME"
	case TypeTimestampTz:
		return "TIMESTAMP"
	case TypeJSON, TypeJSONB:
		return "JSON"
	case TypeUUID:
		return "CHAR(36)"
	case TypeArray:
		// No native array type; JSON is the conventional stand-in.
		return "JSON"
	case TypeCustom:
		return t.Name
	default:
		return "TEXT"
	}
}

func (g *mysqlGenerator) columnClause(col ColumnDefinition) string {
	var b strings.Builder
	b.WriteString(g.quote(col.Name))
	b.WriteString(" ")
	b.WriteString(g.typeName(col.Type))

	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}

	if col.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}

	if col.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(*col.Default)
	}

	if col.Comment != "" {
		b.WriteString(" COMMENT '")
		b.WriteString(escapeLiteral(col.Comment))
		b.WriteString("'")
	}

	return b.String()
}

func (g *mysqlGenerator) CreateTable(def *TableDefinition) (*Result, error) {
	if err := validateTable(def); err != nil {
		return nil, err
	}

	var clauses []string
	for _, col := range def.Columns {
		clauses = append(clauses, g.columnClause(col))
	}

	if pk := effectivePrimaryKey(def); len(pk) > 0 {
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
	b.WriteString(g.qualified(def.Schema, def.Name))
	b.WriteString(" (\n  ")
	b.WriteString(strings.Join(clauses, ",\n  "))
	b.WriteString("\n)")

	if def.Comment != "" {
		b.WriteString(" COMMENT='")
		b.WriteString(escapeLiteral(def.Comment))
		b.WriteString("'")
	}

	return &Result{
		SQL:     []string{b.String()},
		Message: fmt.Sprintf("generated CREATE TABLE for %s", def.Name),
	}, nil
}

func (g *mysqlGenerator) AlterTable(def *AlterTableDefinition) (*Result, error) {
	if err := validateAlter(def); err != nil {
		return nil, err
	}

	prefix := "ALTER TABLE " + g.qualified(def.Schema, def.Name) + " "

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
			statements = append(statements, prefix+"MODIFY COLUMN "+g.quote(op.Name)+" "+g.typeName(*op.Type))
		case AlterSetNotNull:
			if op.Type == nil {
				return nil, querylens.NewErrorf(querylens.ErrorKindInvalidInput,
					"mysql requires the column type to set NOT NULL on %q", op.Name)
			}
			statements = append(statements, prefix+"MODIFY COLUMN "+g.quote(op.Name)+" "+g.typeName(*op.Type)+" NOT NULL")
		case AlterDropNotNull:
			if op.Type == nil {
				return nil, querylens.NewErrorf(querylens.ErrorKindInvalidInput,
					"mysql requires the column type to drop NOT NULL on %q", op.Name)
			}
			statements = append(statements, prefix+"MODIFY COLUMN "+g.quote(op.Name)+" "+g.typeName(*op.Type)+" NULL")
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

func (g *mysqlGenerator) DropTable(def *DropTableDefinition) (*Result, error) {
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
		// The grammar has no DROP TABLE ... CASCADE; dependents stay in place.
		msg += " (CASCADE is not supported by mysql; dependent objects are not dropped)"
	}

	return &Result{
		SQL:     []string{b.String()},
		Message: msg,
	}, nil
}
