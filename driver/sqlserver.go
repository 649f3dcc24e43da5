package driver

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	mssql "github.com/microsoft/go-mssqldb"
	querylens "github.com/querylens/querylens"
)

// sqlserverDriver implements Driver for SQL Server over go-mssqldb. Catalog
// introspection reads the sys.* views; row counts come from partition
// statistics, which track the storage engine's bookkeeping rather than a
// full scan.
type sqlserverDriver struct {
	sqlDriver
}

func connectSQLServer(ctx context.Context, opts ConnectionOptions) (Driver, error) {
	db, err := sql.Open("sqlserver", opts.sqlserverDSN())
	if err != nil {
		return nil, classifySQLServerError(querylens.ErrorKindConnection, err)
	}

	pingCtx, cancel := opts.connectContext(ctx)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, classifySQLServerError(querylens.ErrorKindConnection, err)
	}

	d := &sqlserverDriver{}
	d.db = db
	d.dialect = querylens.DialectSQLServer
	d.convert = convertSQLServerValue
	d.classify = classifySQLServerError

	return d, nil
}

func (d *sqlserverDriver) GetDatabases(ctx context.Context) ([]querylens.DatabaseInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// database_id <= 4 covers master, tempdb, model, and msdb.
	query := `
		SELECT name, ISNULL(SUSER_SNAME(owner_sid), '') AS owner
		FROM sys.databases
		WHERE database_id > 4
		ORDER BY name`

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

func (d *sqlserverDriver) GetSchemas(ctx context.Context) ([]querylens.SchemaInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
		SELECT s.name, ISNULL(p.name, '') AS owner
		FROM sys.schemas s
		LEFT JOIN sys.database_principals p ON s.principal_id = p.principal_id
		WHERE s.name NOT IN ('sys', 'guest', 'INFORMATION_SCHEMA')
		AND s.name NOT LIKE 'db[_]%'
		ORDER BY s.name`

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

func (d *sqlserverDriver) GetTables(ctx context.Context, schema string) ([]querylens.TableInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tablesQuery := `
		SELECT t.name, ISNULL(SUM(ps.row_count), 0) AS row_count,
		       ISNULL(CAST(ep.value AS nvarchar(4000)), '') AS comment
		FROM sys.tables t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		LEFT JOIN sys.dm_db_partition_stats ps
			ON ps.object_id = t.object_id AND ps.index_id IN (0, 1)
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = t.object_id AND ep.minor_id = 0 AND ep.name = 'MS_Description'
		WHERE s.name = @p1
		GROUP BY t.name, CAST(ep.value AS nvarchar(4000))
		ORDER BY t.name`

	var tables []querylens.TableInfo

	err := d.queryMeta(ctx, tablesQuery, []any{schema}, func(rows *sql.Rows) error {
		var info querylens.TableInfo
		if err := rows.Scan(&info.Name, &info.RowCount, &info.Comment); err != nil {
			return err
		}
		info.Schema = schema
		info.Type = "BASE TABLE"
		tables = append(tables, info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	viewsQuery := `
		SELECT v.name
		FROM sys.views v
		JOIN sys.schemas s ON s.schema_id = v.schema_id
		WHERE s.name = @p1
		ORDER BY v.name`

	err = d.queryMeta(ctx, viewsQuery, []any{schema}, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		tables = append(tables, querylens.TableInfo{Name: name, Schema: schema, Type: "VIEW"})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tables, nil
}

func (d *sqlserverDriver) GetTableSchema(ctx context.Context, schema, table string) (*querylens.TableSchema, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := &querylens.TableSchema{Schema: schema, Name: table}

	columnsQuery := `
		SELECT c.name, ty.name AS type_name, c.is_nullable,
		       ISNULL(dc.definition, '') AS default_def,
		       CASE WHEN pk.column_id IS NOT NULL THEN 1 ELSE 0 END AS is_pk,
		       ISNULL(CAST(ep.value AS nvarchar(4000)), '') AS comment,
		       c.column_id
		FROM sys.columns c
		JOIN sys.tables t ON t.object_id = c.object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.types ty ON ty.user_type_id = c.user_type_id
		LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
		LEFT JOIN (
			SELECT ic.object_id, ic.column_id
			FROM sys.index_columns ic
			JOIN sys.indexes i ON i.object_id = ic.object_id AND i.index_id = ic.index_id
			WHERE i.is_primary_key = 1
		) pk ON pk.object_id = c.object_id AND pk.column_id = c.column_id
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = c.object_id AND ep.minor_id = c.column_id AND ep.name = 'MS_Description'
		WHERE s.name = @p1 AND t.name = @p2
		ORDER BY c.column_id`

	err := d.queryMeta(ctx, columnsQuery, []any{schema, table}, func(rows *sql.Rows) error {
		var col querylens.ColumnInfo
		var defaultDef string
		var isPK int

		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &defaultDef, &isPK, &col.Comment, &col.OrdinalPosition); err != nil {
			return err
		}

		col.IsPrimaryKey = isPK == 1
		if defaultDef != "" {
			col.DefaultValue = &defaultDef
		}

		result.Columns = append(result.Columns, col)
		return nil
	})
	if err != nil {
		return nil, err
	}

	indexesQuery := `
		SELECT i.name,
		       STRING_AGG(col.name, ',') WITHIN GROUP (ORDER BY ic.key_ordinal) AS columns,
		       i.is_unique, i.is_primary_key, i.type_desc
		FROM sys.indexes i
		JOIN sys.tables t ON t.object_id = i.object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns col ON col.object_id = ic.object_id AND col.column_id = ic.column_id
		WHERE s.name = @p1 AND t.name = @p2 AND i.name IS NOT NULL
		GROUP BY i.name, i.is_unique, i.is_primary_key, i.type_desc
		ORDER BY i.name`

	err = d.queryMeta(ctx, indexesQuery, []any{schema, table}, func(rows *sql.Rows) error {
		var index querylens.IndexInfo
		var columnsStr, typeDesc string

		if err := rows.Scan(&index.Name, &columnsStr, &index.IsUnique, &index.IsPrimary, &typeDesc); err != nil {
			return err
		}

		index.Columns = splitColumnList(columnsStr)
		index.Type = typeDesc
		result.Indexes = append(result.Indexes, index)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// convertSQLServerValue is the SQL Server wire-value coercion table. Binary
// columns use a 0x-prefixed hex string, matching T-SQL binary literals.
// uniqueidentifier bytes arrive in SQL Server's mixed-endian layout, so they
// go through the client's own scanner rather than a plain byte copy.
func convertSQLServerValue(dbType string, v any) any {
	switch dbType {
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		return coerceDecimal(v)
	case "UNIQUEIDENTIFIER":
		if b, ok := v.([]byte); ok {
			var id mssql.UniqueIdentifier
			if err := id.Scan(b); err == nil {
				return id.String()
			}
		}
	case "DATE":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalDate, t)
		}
	case "TIME":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalTime, t)
		}
	case "DATETIMEOFFSET":
		if t, ok := v.(time.Time); ok {
			return formatTemporal(temporalTimestampTz, t)
		}
	case "DATETIME", "DATETIME2", "SMALLDATETIME":
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
		if utf8.Valid(val) && isSQLServerTextType(dbType) {
			return string(val)
		}
		return "0x" + hex.EncodeToString(val)
	default:
		return coerceFallback(v)
	}
}

func isSQLServerTextType(dbType string) bool {
	switch dbType {
	case "CHAR", "VARCHAR", "NCHAR", "NVARCHAR", "TEXT", "NTEXT", "XML":
		return true
	default:
		return false
	}
}

// classifySQLServerError maps a native error into the shared taxonomy with
// the engine error number as the raw code. 18456/18452 are login failures.
func classifySQLServerError(kind querylens.ErrorKind, err error) *querylens.Error {
	var sqlErr mssql.Error
	if errors.As(err, &sqlErr) {
		code := strconv.Itoa(int(sqlErr.Number))
		if sqlErr.Number == 18456 || sqlErr.Number == 18452 {
			return querylens.WrapError(querylens.ErrorKindAuth, code, err)
		}
		return querylens.WrapError(kind, code, err)
	}

	return querylens.WrapError(kind, "", err)
}
