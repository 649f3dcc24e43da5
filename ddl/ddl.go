// Package ddl translates a portable table description into each SQL
// engine's native CREATE/ALTER/DROP TABLE syntax. Generators validate their
// input before building any SQL and fail closed: a structurally invalid or
// unsupported-by-dialect request never yields a partial statement. The
// returned SQL is never executed here; callers hand each statement to a
// driver explicitly.
package ddl

import (
	"strings"

	querylens "github.com/querylens/querylens"
)

// TypeKind tags the portable column type vocabulary.
type TypeKind string

const (
	TypeSmallInt        TypeKind = "smallint"
	TypeInteger         TypeKind = "integer"
	TypeBigInt          TypeKind = "bigint"
	TypeDecimal         TypeKind = "decimal"
	TypeReal            TypeKind = "real"
	TypeDoublePrecision TypeKind = "double"
	TypeVarchar         TypeKind = "varchar"
	TypeChar            TypeKind = "char"
	TypeText            TypeKind = "text"
	TypeBytea           TypeKind = "bytea"
	TypeBoolean         TypeKind = "boolean"
	TypeDate            TypeKind = "date"
	TypeTime            TypeKind = "time"
	TypeTimestamp       TypeKind = "timestamp"
	TypeTimestampTz     TypeKind = "timestamptz"
	TypeJSON            TypeKind = "json"
	TypeJSONB           TypeKind = "jsonb"
	TypeUUID            TypeKind = "uuid"
	TypeArray           TypeKind = "array"
	TypeCustom          TypeKind = "custom"
)

// ColumnType is one member of the portable type vocabulary. Only the fields
// relevant to the kind are set: Precision/Scale for decimal, Length for
// varchar/char, Elem for array, Name for custom.
type ColumnType struct {
	Kind      TypeKind    `json:"kind"`
	Precision int         `json:"precision,omitempty"`
	Scale     int         `json:"scale,omitempty"`
	Length    int         `json:"length,omitempty"`
	Elem      *ColumnType `json:"elem,omitempty"`
	Name      string      `json:"name,omitempty"`
}

// Convenience constructors for the portable types.

func SmallInt() ColumnType        { return ColumnType{Kind: TypeSmallInt} }
func Integer() ColumnType         { return ColumnType{Kind: TypeInteger} }
func BigInt() ColumnType          { return ColumnType{Kind: TypeBigInt} }
func Decimal(p, s int) ColumnType { return ColumnType{Kind: TypeDecimal, Precision: p, Scale: s} }
func Real() ColumnType            { return ColumnType{Kind: TypeReal} }
func DoublePrecision() ColumnType { return ColumnType{Kind: TypeDoublePrecision} }
func Varchar(n int) ColumnType    { return ColumnType{Kind: TypeVarchar, Length: n} }
func Char(n int) ColumnType       { return ColumnType{Kind: TypeChar, Length: n} }
func Text() ColumnType            { return ColumnType{Kind: TypeText} }
func Bytea() ColumnType           { return ColumnType{Kind: TypeBytea} }
func Boolean() ColumnType         { return ColumnType{Kind: TypeBoolean} }
func Date() ColumnType            { return ColumnType{Kind: TypeDate} }
func Time() ColumnType            { return ColumnType{Kind: TypeTime} }
func Timestamp() ColumnType       { return ColumnType{Kind: TypeTimestamp} }
func TimestampTz() ColumnType     { return ColumnType{Kind: TypeTimestampTz} }
func JSON() ColumnType            { return ColumnType{Kind: TypeJSON} }
func JSONB() ColumnType           { return ColumnType{Kind: TypeJSONB} }
func UUID() ColumnType            { return ColumnType{Kind: TypeUUID} }
func Array(elem ColumnType) ColumnType {
	return ColumnType{Kind: TypeArray, Elem: &elem}
}
func Custom(name string) ColumnType { return ColumnType{Kind: TypeCustom, Name: name} }

// IsInteger reports whether the type belongs to the integer family, the
// only family auto-increment is valid on.
func (t ColumnType) IsInteger() bool {
	switch t.Kind {
	case TypeSmallInt, TypeInteger, TypeBigInt:
		return true
	default:
		return false
	}
}

// ColumnDefinition describes one column of a portable table description.
// Default is a raw SQL fragment emitted verbatim; string literals inside it
// are the caller's to quote.
type ColumnDefinition struct {
	Name          string     `json:"name"`
	Type          ColumnType `json:"type"`
	Nullable      bool       `json:"nullable"`
	Default       *string    `json:"default,omitempty"`
	PrimaryKey    bool       `json:"primaryKey"`
	AutoIncrement bool       `json:"autoIncrement"`
	Comment       string     `json:"comment,omitempty"`
}

// ReferentialAction is a foreign key ON DELETE / ON UPDATE action.
type ReferentialAction string

const (
	ActionNoAction   ReferentialAction = "no action"
	ActionRestrict   ReferentialAction = "restrict"
	ActionCascade    ReferentialAction = "cascade"
	ActionSetNull    ReferentialAction = "set null"
	ActionSetDefault ReferentialAction = "set default"
)

// ForeignKeyConstraint references columns of another table.
type ForeignKeyConstraint struct {
	Name              string            `json:"name,omitempty"`
	Columns           []string          `json:"columns"`
	ReferencedTable   string            `json:"referencedTable"`
	ReferencedColumns []string          `json:"referencedColumns"`
	OnDelete          ReferentialAction `json:"onDelete,omitempty"`
	OnUpdate          ReferentialAction `json:"onUpdate,omitempty"`
}

// UniqueConstraint covers one or more columns.
type UniqueConstraint struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
}

// CheckConstraint holds a raw check expression.
type CheckConstraint struct {
	Name       string `json:"name,omitempty"`
	Expression string `json:"expression"`
}

// TableDefinition is the portable input to CreateTable. It is constructed
// by a caller, validated and consumed once, and not retained.
type TableDefinition struct {
	Schema      string                 `json:"schema,omitempty"`
	Name        string                 `json:"name"`
	Columns     []ColumnDefinition     `json:"columns"`
	PrimaryKey  []string               `json:"primaryKey,omitempty"` // explicit composite key
	ForeignKeys []ForeignKeyConstraint `json:"foreignKeys,omitempty"`
	Uniques     []UniqueConstraint     `json:"uniques,omitempty"`
	Checks      []CheckConstraint      `json:"checks,omitempty"`
	Comment     string                 `json:"comment,omitempty"`
	IfNotExists bool                   `json:"ifNotExists"`
}

// AlterKind tags one alteration operation.
type AlterKind string

const (
	AlterAddColumn    AlterKind = "add_column"
	AlterDropColumn   AlterKind = "drop_column"
	AlterRenameColumn AlterKind = "rename_column"
	AlterType         AlterKind = "alter_type"
	AlterSetNotNull   AlterKind = "set_not_null"
	AlterDropNotNull  AlterKind = "drop_not_null"
	AlterSetDefault   AlterKind = "set_default"
	AlterDropDefault  AlterKind = "drop_default"
)

// AlterOperation is one step of an alteration. Column is set for add_column;
// the other kinds address an existing column by Name. Type is required for
// alter_type and additionally for not-null toggles on dialects whose grammar
// restates the column type (MySQL, SQL Server). Default is the raw fragment
// for set_default.
type AlterOperation struct {
	Kind    AlterKind         `json:"kind"`
	Column  *ColumnDefinition `json:"column,omitempty"`
	Name    string            `json:"name,omitempty"`
	NewName string            `json:"newName,omitempty"`
	Type    *ColumnType       `json:"type,omitempty"`
	Default *string           `json:"default,omitempty"`
}

// AlterTableDefinition is the portable input to AlterTable.
type AlterTableDefinition struct {
	Schema     string           `json:"schema,omitempty"`
	Name       string           `json:"name"`
	Operations []AlterOperation `json:"operations"`
}

// DropTableDefinition is the portable input to DropTable.
type DropTableDefinition struct {
	Schema   string `json:"schema,omitempty"`
	Name     string `json:"name"`
	IfExists bool   `json:"ifExists"`
	Cascade  bool   `json:"cascade"`
}

// Result is an ordered sequence of SQL statements plus a human-readable
// message. CreateTable and DropTable always emit at least one statement;
// AlterTable emits one statement per operation.
type Result struct {
	SQL     []string `json:"sql"`
	Message string   `json:"message"`
}

// Generator is the abstract contract each SQL dialect implements.
type Generator interface {
	Dialect() querylens.Dialect
	CreateTable(def *TableDefinition) (*Result, error)
	AlterTable(def *AlterTableDefinition) (*Result, error)
	DropTable(def *DropTableDefinition) (*Result, error)
}

// New returns the generator for a dialect. The document store has no DDL
// concept, so requesting it is invalid input.
func New(dialect querylens.Dialect) (Generator, error) {
	switch dialect {
	case querylens.DialectPostgres:
		return &postgresGenerator{}, nil
	case querylens.DialectMySQL:
		return &mysqlGenerator{}, nil
	case querylens.DialectSQLite:
		return &sqliteGenerator{}, nil
	case querylens.DialectSQLServer:
		return &sqlserverGenerator{}, nil
	case querylens.DialectMongoDB:
		return nil, querylens.NewError(querylens.ErrorKindInvalidInput, "", "mongodb has no DDL concept")
	default:
		return nil, querylens.NewErrorf(querylens.ErrorKindInvalidInput, "unsupported dialect: %s", dialect)
	}
}

// validateTable enforces the structural rules shared by every dialect.
func validateTable(def *TableDefinition) error {
	if def.Name == "" {
		return querylens.NewError(querylens.ErrorKindInvalidInput, "", "table name is required")
	}
	if len(def.Columns) == 0 {
		return querylens.NewError(querylens.ErrorKindInvalidInput, "", "table must have at least one column")
	}

	for _, col := range def.Columns {
		if col.Name == "" {
			return querylens.NewError(querylens.ErrorKindInvalidInput, "", "column name is required")
		}
		if col.AutoIncrement && !col.Type.IsInteger() {
			return querylens.NewErrorf(querylens.ErrorKindInvalidInput,
				"column %q: auto-increment is only valid on integer-family columns", col.Name)
		}
	}

	return nil
}

func validateAlter(def *AlterTableDefinition) error {
	if def.Name == "" {
		return querylens.NewError(querylens.ErrorKindInvalidInput, "", "table name is required")
	}
	if len(def.Operations) == 0 {
		return querylens.NewError(querylens.ErrorKindInvalidInput, "", "alteration must have at least one operation")
	}

	for _, op := range def.Operations {
		switch op.Kind {
		case AlterAddColumn:
			if op.Column == nil {
				return querylens.NewError(querylens.ErrorKindInvalidInput, "", "add_column requires a column definition")
			}
			if op.Column.AutoIncrement && !op.Column.Type.IsInteger() {
				return querylens.NewErrorf(querylens.ErrorKindInvalidInput,
					"column %q: auto-increment is only valid on integer-family columns", op.Column.Name)
			}
		case AlterDropColumn, AlterSetNotNull, AlterDropNotNull, AlterDropDefault:
			if op.Name == "" {
				return querylens.NewErrorf(querylens.ErrorKindInvalidInput, "%s requires a column name", op.Kind)
			}
		case AlterRenameColumn:
			if op.Name == "" || op.NewName == "" {
				return querylens.NewError(querylens.ErrorKindInvalidInput, "", "rename_column requires both names")
			}
		case AlterType:
			if op.Name == "" || op.Type == nil {
				return querylens.NewError(querylens.ErrorKindInvalidInput, "", "alter_type requires a column name and a type")
			}
		case AlterSetDefault:
			if op.Name == "" || op.Default == nil {
				return querylens.NewError(querylens.ErrorKindInvalidInput, "", "set_default requires a column name and a default")
			}
		default:
			return querylens.NewErrorf(querylens.ErrorKindInvalidInput, "unknown alter operation %q", op.Kind)
		}
	}

	return nil
}

func validateDrop(def *DropTableDefinition) error {
	if def.Name == "" {
		return querylens.NewError(querylens.ErrorKindInvalidInput, "", "table name is required")
	}
	return nil
}

// effectivePrimaryKey resolves the primary key columns: an explicit
// composite key wins, otherwise the flagged columns in declaration order.
func effectivePrimaryKey(def *TableDefinition) []string {
	if len(def.PrimaryKey) > 0 {
		return def.PrimaryKey
	}

	var keys []string
	for _, col := range def.Columns {
		if col.PrimaryKey {
			keys = append(keys, col.Name)
		}
	}

	return keys
}

// escapeLiteral doubles single quotes for embedding text in a SQL string
// literal. Used for comment literals built by the generators.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func quoteAll(quote func(string) string, names []string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = quote(name)
	}
	return quoted
}

func renderAction(keyword string, action ReferentialAction) string {
	if action == "" {
		return ""
	}
	return " " + keyword + " " + strings.ToUpper(string(action))
}
