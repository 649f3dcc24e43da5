package querylens

import "strings"

// Dialect represents supported database engines.
// This type is shared across all packages.
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
	DialectSQLite    Dialect = "sqlite"
	DialectSQLServer Dialect = "sqlserver"
	DialectMongoDB   Dialect = "mongodb"
)

// AllDialects lists every supported dialect in a stable order.
var AllDialects = []Dialect{
	DialectPostgres,
	DialectMySQL,
	DialectSQLite,
	DialectSQLServer,
	DialectMongoDB,
}

// ParseDialect normalizes a dialect name, accepting common aliases.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "sqlserver", "mssql":
		return DialectSQLServer, nil
	case "mongodb", "mongo":
		return DialectMongoDB, nil
	default:
		return "", NewError(ErrorKindInvalidInput, "", "unsupported dialect: "+name)
	}
}

// String returns the canonical dialect name.
func (d Dialect) String() string {
	return string(d)
}
