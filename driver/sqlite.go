package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	querylens "github.com/querylens/querylens"
)

// sqliteDriver implements Driver for SQLite. The native client is
// synchronous, so each call holds the connection lock for its full
// duration; Go parks the calling goroutine's thread rather than a shared
// scheduler worker, so other connections proceed unaffected. SQLite has a
// single fixed schema named "main".
type sqliteDriver struct {
	sqlDriver
}

func connectSQLite(ctx context.Context, opts ConnectionOptions) (Driver, error) {
	path := opts.FilePath
	if path == "" {
		return nil, querylens.NewError(querylens.ErrorKindInvalidInput, "", "sqlite requires a file path")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, classifySQLiteError(querylens.ErrorKindConnection, err)
	}

	// A single connection keeps in-memory databases stable and matches the
	// one-handle ownership model.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := opts.connectContext(ctx)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, classifySQLiteError(querylens.ErrorKindConnection, err)
	}

	d := &sqliteDriver{}
	d.db = db
	d.dialect = querylens.DialectSQLite
	d.convert = convertSQLiteValue
	d.classify = classifySQLiteError
	// The sqlite client only prepares on the query path, so zero-column
	// statements can move to the command path without double execution.
	d.retryZeroColumns = true

	return d, nil
}

func (d *sqliteDriver) GetDatabases(ctx context.Context) ([]querylens.DatabaseInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var databases []querylens.DatabaseInfo

	err := d.queryMeta(ctx, "PRAGMA database_list", nil, func(rows *sql.Rows) error {
		var seq int
		var name string
		var file sql.NullString

		if err := rows.Scan(&seq, &name, &file); err != nil {
			return err
		}

		databases = append(databases, querylens.DatabaseInfo{Name: name})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return databases, nil
}

// GetSchemas reports the fixed "main" schema; SQLite has no schema concept.
func (d *sqliteDriver) GetSchemas(ctx context.Context) ([]querylens.SchemaInfo, error) {
	return []querylens.SchemaInfo{{Name: "main"}}, nil
}

func (d *sqliteDriver) GetTables(ctx context.Context, schema string) ([]querylens.TableInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	var tables []querylens.TableInfo

	err := d.queryMeta(ctx, query, nil, func(rows *sql.Rows) error {
		var name, objType string
		if err := rows.Scan(&name, &objType); err != nil {
			return err
		}

		info := querylens.TableInfo{Name: name, Schema: "main", Type: "BASE TABLE"}
		if objType == "view" {
			info.Type = "VIEW"
		}

		tables = append(tables, info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A full count per table is cheap enough here; SQLite is local.
	for i := range tables {
		if tables[i].Type != "BASE TABLE" {
			continue
		}

		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteSQLiteIdent(tables[i].Name))
		if err := d.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
			return nil, classifySQLiteError(querylens.ErrorKindQuery, err)
		}
		tables[i].RowCount = count
	}

	return tables, nil
}

func (d *sqliteDriver) GetTableSchema(ctx context.Context, schema, table string) (*querylens.TableSchema, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := &querylens.TableSchema{Schema: "main", Name: table}

	columnsQuery := fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLiteIdent(table))

	err := d.queryMeta(ctx, columnsQuery, nil, func(rows *sql.Rows) error {
		var cid, notNull, pk int
		var name, dataType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return err
		}

		col := querylens.ColumnInfo{
			Name:            name,
			DataType:        dataType,
			Nullable:        notNull == 0,
			IsPrimaryKey:    pk > 0,
			OrdinalPosition: cid + 1,
		}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}

		result.Columns = append(result.Columns, col)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Columns) == 0 {
		return nil, querylens.NewErrorf(querylens.ErrorKindQuery, "table %q does not exist", table)
	}

	indexes, err := d.tableIndexes(ctx, table)
	if err != nil {
		return nil, err
	}
	result.Indexes = indexes

	return result, nil
}

func (d *sqliteDriver) tableIndexes(ctx context.Context, table string) ([]querylens.IndexInfo, error) {
	listQuery := fmt.Sprintf("PRAGMA index_list(%s)", quoteSQLiteIdent(table))

	type indexEntry struct {
		name   string
		unique bool
		origin string
	}

	var entries []indexEntry

	err := d.queryMeta(ctx, listQuery, nil, func(rows *sql.Rows) error {
		var seq, unique, partial int
		var name, origin string

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return err
		}

		entries = append(entries, indexEntry{name: name, unique: unique == 1, origin: origin})
		return nil
	})
	if err != nil {
		return nil, err
	}

	var indexes []querylens.IndexInfo

	for _, entry := range entries {
		infoQuery := fmt.Sprintf("PRAGMA index_info(%s)", quoteSQLiteIdent(entry.name))

		var columns []string

		err := d.queryMeta(ctx, infoQuery, nil, func(rows *sql.Rows) error {
			var seqno, cid int
			var colName sql.NullString

			if err := rows.Scan(&seqno, &cid, &colName); err != nil {
				return err
			}

			if colName.Valid {
				columns = append(columns, colName.String)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		indexes = append(indexes, querylens.IndexInfo{
			Name:      entry.name,
			Columns:   columns,
			IsUnique:  entry.unique,
			IsPrimary: entry.origin == "pk",
			Type:      "btree",
		})
	}

	return indexes, nil
}

// convertSQLiteValue is the SQLite wire-value coercion table. Blobs become a
// length-only placeholder string; SQLite blob contents are rarely useful as
// text and the placeholder keeps rows JSON-safe.
func convertSQLiteValue(dbType string, v any) any {
	declared := strings.ToUpper(dbType)

	switch val := v.(type) {
	case int64, bool, string:
		return val
	case float64:
		return coerceFloat(val)
	case time.Time:
		switch declared {
		case "DATE":
			return formatTemporal(temporalDate, val)
		default:
			return formatTemporal(temporalTimestamp, val)
		}
	case []byte:
		if strings.Contains(declared, "JSON") {
			return coerceJSON(val)
		}
		if strings.Contains(declared, "BLOB") {
			return fmt.Sprintf("<binary: %d bytes>", len(val))
		}
		return string(val)
	default:
		return coerceFallback(v)
	}
}

// classifySQLiteError maps a native error into the shared taxonomy with the
// SQLite result code as the raw code.
func classifySQLiteError(kind querylens.ErrorKind, err error) *querylens.Error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		code := strconv.Itoa(int(sqliteErr.Code))
		if sqliteErr.Code == sqlite3.ErrAuth {
			return querylens.WrapError(querylens.ErrorKindAuth, code, err)
		}
		return querylens.WrapError(kind, code, err)
	}

	return querylens.WrapError(kind, "", err)
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
