package driver

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	querylens "github.com/querylens/querylens"
)

// postgresDriver implements Driver for PostgreSQL over pgx's database/sql
// adapter. The connection uses the simple query protocol so multi-statement
// batches reach the server unmodified.
type postgresDriver struct {
	sqlDriver
}

func connectPostgres(ctx context.Context, opts ConnectionOptions) (Driver, error) {
	db, err := sql.Open("pgx", opts.postgresDSN())
	if err != nil {
		return nil, classifyPostgresError(querylens.ErrorKindConnection, err)
	}

	pingCtx, cancel := opts.connectContext(ctx)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, classifyPostgresError(querylens.ErrorKindConnection, err)
	}

	d := &postgresDriver{}
	d.db = db
	d.dialect = querylens.DialectPostgres
	d.convert = convertPostgresValue
	d.classify = classifyPostgresError

	return d, nil
}

func (d *postgresDriver) GetDatabases(ctx context.Context) ([]querylens.DatabaseInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
		SELECT datname, pg_get_userbyid(datdba) AS owner
		FROM pg_database
		WHERE NOT datistemplate
		ORDER BY datname`

	var databases []querylens.DatabaseInfo

	err := d.queryMeta(ctx, query, nil, func(rows *sql.Rows) error {
		var info querylens.DatabaseInfo
		if err := rows.Scan(&info.Name, &info.Owner); err != nil {
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

func (d *postgresDriver) GetSchemas(ctx context.Context) ([]querylens.SchemaInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
		SELECT schema_name, schema_owner
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		ORDER BY schema_name`

	var schemas []querylens.SchemaInfo

	err := d.queryMeta(ctx, query, nil, func(rows *sql.Rows) error {
		var info querylens.SchemaInfo
		if err := rows.Scan(&info.Name, &info.Owner); err != nil {
			return err
		}
		schemas = append(schemas, info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return schemas, nil
}

func (d *postgresDriver) GetTables(ctx context.Context, schema string) ([]querylens.TableInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
		SELECT t.table_name, t.table_type, COALESCE(obj_description(c.oid), '') AS comment
		FROM information_schema.tables t
		LEFT JOIN pg_namespace n ON n.nspname = t.table_schema
		LEFT JOIN pg_class c ON c.relname = t.table_name AND c.relnamespace = n.oid
		WHERE t.table_schema = $1
		ORDER BY t.table_name`

	var tables []querylens.TableInfo

	err := d.queryMeta(ctx, query, []any{schema}, func(rows *sql.Rows) error {
		var info querylens.TableInfo
		if err := rows.Scan(&info.Name, &info.Type, &info.Comment); err != nil {
			return err
		}
		info.Schema = schema
		tables = append(tables, info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// reltuples is a planner estimate, so counts are approximate. One query
	// per table matches the browsing use case; clamped at zero because a
	// never-analyzed table reports -1.
	countQuery := `
		SELECT GREATEST(c.reltuples::bigint, 0)
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2`

	for i := range tables {
		var count int64
		err := d.db.QueryRowContext(ctx, countQuery, schema, tables[i].Name).Scan(&count)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, classifyPostgresError(querylens.ErrorKindQuery, err)
		}
		tables[i].RowCount = count
	}

	return tables, nil
}

func (d *postgresDriver) GetTableSchema(ctx context.Context, schema, table string) (*querylens.TableSchema, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := &querylens.TableSchema{Schema: schema, Name: table}

	commentQuery := `
		SELECT COALESCE(obj_description(c.oid), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2`

	err := d.db.QueryRowContext(ctx, commentQuery, schema, table).Scan(&result.Comment)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, classifyPostgresError(querylens.ErrorKindQuery, err)
	}

	primaryKeys, err := d.primaryKeyColumns(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	columnsQuery := `
		SELECT col.column_name, col.data_type, col.is_nullable, col.column_default,
		       COALESCE(col_description(c.oid, col.ordinal_position), '') AS comment,
		       col.ordinal_position
		FROM information_schema.columns col
		LEFT JOIN pg_namespace n ON n.nspname = col.table_schema
		LEFT JOIN pg_class c ON c.relname = col.table_name AND c.relnamespace = n.oid
		WHERE col.table_schema = $1 AND col.table_name = $2
		ORDER BY col.ordinal_position`

	err = d.queryMeta(ctx, columnsQuery, []any{schema, table}, func(rows *sql.Rows) error {
		var col querylens.ColumnInfo
		var isNullable string
		var defaultValue sql.NullString

		if err := rows.Scan(&col.Name, &col.DataType, &isNullable, &defaultValue, &col.Comment, &col.OrdinalPosition); err != nil {
			return err
		}

		col.Nullable = isNullable == "YES"
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		col.IsPrimaryKey = primaryKeys[col.Name]

		result.Columns = append(result.Columns, col)
		return nil
	})
	if err != nil {
		return nil, err
	}

	indexesQuery := `
		SELECT i.relname AS index_name,
		       string_agg(a.attname, ',' ORDER BY a.attnum) AS columns,
		       ix.indisunique, ix.indisprimary, am.amname
		FROM pg_class t
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_am am ON i.relam = am.oid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1 AND t.relname = $2
		GROUP BY i.relname, ix.indisunique, ix.indisprimary, am.amname
		ORDER BY i.relname`

	err = d.queryMeta(ctx, indexesQuery, []any{schema, table}, func(rows *sql.Rows) error {
		var index querylens.IndexInfo
		var columnsStr string

		if err := rows.Scan(&index.Name, &columnsStr, &index.IsUnique, &index.IsPrimary, &index.Type); err != nil {
			return err
		}

		index.Columns = splitColumnList(columnsStr)
		result.Indexes = append(result.Indexes, index)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (d *postgresDriver) primaryKeyColumns(ctx context.Context, schema, table string) (map[string]bool, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2
		AND tc.constraint_type = 'PRIMARY KEY'`

	primaryKeys := map[string]bool{}

	err := d.queryMeta(ctx, query, []any{schema, table}, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		primaryKeys[name] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return primaryKeys, nil
}

// convertPostgresValue is the PostgreSQL wire-value coercion table. Binary
// bytea values use PostgreSQL's own hex textual form (a \x prefix).
func convertPostgresValue(dbType string, v any) any {
	switch dbType {
	case "NUMERIC", "DECIMAL", "MONEY":
		return coerceDecimal(v)
	case "JSON", "JSONB":
		return coerceJSON(v)
	case "UUID":
		return coerceUUID(v)
	case "BYTEA":
		if b, ok := v.([]byte); ok {
			return `\x` + hex.EncodeToString(b)
		}
	case "DATE":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalDate, t)
		}
	case "TIME", "TIMETZ":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalTime, t)
		}
	case "TIMESTAMPTZ":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalTimestampTz, t)
		}
	case "TIMESTAMP":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalTimestamp, t)
		}
	}

	switch val := v.(type) {
	case int64, int32, int16, bool, string:
		return val
	case float64:
		return coerceFloat(val)
	case float32:
		return coerceFloat(float64(val))
	case time.Time:
		return formatTemporal(temporalTimestamp, val)
	case []byte:
		if utf8.Valid(val) {
			return string(val)
		}
		return `\x` + hex.EncodeToString(val)
	default:
		return coerceFallback(v)
	}
}

// classifyPostgresError maps a native error into the shared taxonomy,
// preserving the SQLSTATE code when pgconn exposes one.
func classifyPostgresError(kind querylens.ErrorKind, err error) *querylens.Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 28 is invalid_authorization_specification.
		if strings.HasPrefix(pgErr.Code, "28") {
			return querylens.WrapError(querylens.ErrorKindAuth, pgErr.Code, err)
		}
		return querylens.WrapError(kind, pgErr.Code, err)
	}

	return querylens.WrapError(kind, "", err)
}

func splitColumnList(columns string) []string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
