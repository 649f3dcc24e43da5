package driver

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"
	querylens "github.com/querylens/querylens"
)

// mysqlDriver implements Driver for MySQL and MariaDB. MySQL has no schema
// layer separate from databases, so GetSchemas reports the connected
// database as its own single schema.
type mysqlDriver struct {
	sqlDriver
}

func connectMySQL(ctx context.Context, opts ConnectionOptions) (Driver, error) {
	db, err := sql.Open("mysql", opts.mysqlDSN())
	if err != nil {
		return nil, classifyMySQLError(querylens.ErrorKindConnection, err)
	}

	pingCtx, cancel := opts.connectContext(ctx)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, classifyMySQLError(querylens.ErrorKindConnection, err)
	}

	d := &mysqlDriver{}
	d.db = db
	d.dialect = querylens.DialectMySQL
	d.convert = convertMySQLValue
	d.classify = classifyMySQLError

	return d, nil
}

func (d *mysqlDriver) GetDatabases(ctx context.Context) ([]querylens.DatabaseInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
		SELECT SCHEMA_NAME, DEFAULT_CHARACTER_SET_NAME
		FROM information_schema.SCHEMATA
		WHERE SCHEMA_NAME NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
		ORDER BY SCHEMA_NAME`

	var databases []querylens.DatabaseInfo

	err := d.queryMeta(ctx, query, nil, func(rows *sql.Rows) error {
		var info querylens.DatabaseInfo
		if err := rows.Scan(&info.Name, &info.Charset); err != nil {
			return err
		}
		databases = append(databases, info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return databases, nil
}

// GetSchemas reports the connected database as the single schema; MySQL has
// no separate schema namespace.
func (d *mysqlDriver) GetSchemas(ctx context.Context) ([]querylens.SchemaInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var current sql.NullString
	if err := d.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&current); err != nil {
		return nil, classifyMySQLError(querylens.ErrorKindQuery, err)
	}

	if !current.Valid || current.String == "" {
		return []querylens.SchemaInfo{}, nil
	}

	return []querylens.SchemaInfo{{Name: current.String}}, nil
}

func (d *mysqlDriver) GetTables(ctx context.Context, schema string) ([]querylens.TableInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// TABLE_ROWS is the storage engine's estimate, not an exact count.
	query := `
		SELECT TABLE_NAME, TABLE_TYPE, COALESCE(TABLE_ROWS, 0), TABLE_COMMENT
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME`

	var tables []querylens.TableInfo

	err := d.queryMeta(ctx, query, []any{schema}, func(rows *sql.Rows) error {
		var info querylens.TableInfo
		if err := rows.Scan(&info.Name, &info.Type, &info.RowCount, &info.Comment); err != nil {
			return err
		}
		info.Schema = schema
		tables = append(tables, info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tables, nil
}

func (d *mysqlDriver) GetTableSchema(ctx context.Context, schema, table string) (*querylens.TableSchema, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := &querylens.TableSchema{Schema: schema, Name: table}

	err := d.db.QueryRowContext(ctx, `
		SELECT TABLE_COMMENT
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`, schema, table).Scan(&result.Comment)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, classifyMySQLError(querylens.ErrorKindQuery, err)
	}

	columnsQuery := `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY,
		       COLUMN_DEFAULT, COLUMN_COMMENT, ORDINAL_POSITION
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	err = d.queryMeta(ctx, columnsQuery, []any{schema, table}, func(rows *sql.Rows) error {
		var col querylens.ColumnInfo
		var isNullable, columnKey string
		var defaultValue sql.NullString

		if err := rows.Scan(&col.Name, &col.DataType, &isNullable, &columnKey, &defaultValue, &col.Comment, &col.OrdinalPosition); err != nil {
			return err
		}

		col.Nullable = isNullable == "YES"
		col.IsPrimaryKey = columnKey == "PRI"
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}

		result.Columns = append(result.Columns, col)
		return nil
	})
	if err != nil {
		return nil, err
	}

	indexesQuery := `
		SELECT INDEX_NAME, NON_UNIQUE, COLUMN_NAME, INDEX_TYPE
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`

	var indexes []querylens.IndexInfo
	indexPositions := map[string]int{}

	err = d.queryMeta(ctx, indexesQuery, []any{schema, table}, func(rows *sql.Rows) error {
		var name, column, indexType string
		var nonUnique int

		if err := rows.Scan(&name, &nonUnique, &column, &indexType); err != nil {
			return err
		}

		if pos, ok := indexPositions[name]; ok {
			indexes[pos].Columns = append(indexes[pos].Columns, column)
			return nil
		}

		indexPositions[name] = len(indexes)
		indexes = append(indexes, querylens.IndexInfo{
			Name:      name,
			Columns:   []string{column},
			IsUnique:  nonUnique == 0,
			IsPrimary: name == "PRIMARY",
			Type:      indexType,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Indexes = indexes

	return result, nil
}

// mysqlBinaryTypes lists column type names whose []byte payloads are binary
// rather than text.
var mysqlBinaryTypes = map[string]bool{
	"BINARY":     true,
	"VARBINARY":  true,
	"BLOB":       true,
	"TINYBLOB":   true,
	"MEDIUMBLOB": true,
	"LONGBLOB":   true,
	"BIT":        true,
}

// convertMySQLValue is the MySQL wire-value coercion table. The client hands
// most non-numeric values over as []byte; text-family bytes become strings,
// and binary bytes (or any bytes that are not valid UTF-8) become a
// 0x-prefixed hex string.
func convertMySQLValue(dbType string, v any) any {
	switch dbType {
	case "DECIMAL", "NUMERIC":
		return coerceDecimal(v)
	case "JSON":
		return coerceJSON(v)
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "BIGINT", "YEAR",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT",
		"UNSIGNED INT", "UNSIGNED BIGINT":
		// The text protocol delivers numbers as byte strings.
		if b, ok := v.([]byte); ok {
			if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
				return n
			}
			return string(b)
		}
	case "FLOAT", "DOUBLE":
		if b, ok := v.([]byte); ok {
			if f, err := strconv.ParseFloat(string(b), 64); err == nil {
				return coerceFloat(f)
			}
			return string(b)
		}
	case "DATE":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalDate, t)
		}
	case "TIME":
		// MySQL TIME arrives as text even with parseTime enabled.
		if b, ok := v.([]byte); ok {
			return string(b)
		}
	case "DATETIME", "TIMESTAMP":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalTimestamp, t)
		}
	}

	switch val := v.(type) {
	case int64, int32, bool, string:
		return val
	case float64:
		return coerceFloat(val)
	case float32:
		return coerceFloat(float64(val))
	case time.Time:
		return formatTemporal(temporalTimestamp, val)
	case []byte:
		if !mysqlBinaryTypes[dbType] && utf8.Valid(val) {
			return string(val)
		}
		return "0x" + hex.EncodeToString(val)
	default:
		return coerceFallback(v)
	}
}

// classifyMySQLError maps a native error into the shared taxonomy, keeping
// the MySQL error number as the raw code. 1044/1045 are access-denied.
func classifyMySQLError(kind querylens.ErrorKind, err error) *querylens.Error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		code := strconv.Itoa(int(mysqlErr.Number))
		if mysqlErr.Number == 1044 || mysqlErr.Number == 1045 {
			return querylens.WrapError(querylens.ErrorKindAuth, code, err)
		}
		return querylens.WrapError(kind, code, err)
	}

	return querylens.WrapError(kind, "", err)
}
