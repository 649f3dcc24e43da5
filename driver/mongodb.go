package driver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	querylens "github.com/querylens/querylens"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoDriver implements Driver for MongoDB. The document store has no SQL
// surface; ExecuteQuery parses a small fixed command grammar of the form
// db.<collection>.<op>(<args>). Metadata calls present collections as tables
// of type COLLECTION under a single fixed "public" schema.
type mongoDriver struct {
	mu       sync.Mutex
	client   *mongo.Client
	database string
	closed   bool
}

func connectMongoDB(ctx context.Context, opts ConnectionOptions) (Driver, error) {
	clientOpts := options.Client().ApplyURI(opts.mongoURI())
	if opts.Timeout > 0 {
		clientOpts.SetConnectTimeout(opts.Timeout)
	}

	connectCtx, cancel := opts.connectContext(ctx)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, classifyMongoError(querylens.ErrorKindConnection, err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, classifyMongoError(querylens.ErrorKindConnection, err)
	}

	return &mongoDriver{
		client:   client,
		database: opts.databaseOr("test"),
	}, nil
}

func (d *mongoDriver) Dialect() querylens.Dialect {
	return querylens.DialectMongoDB
}

func (d *mongoDriver) TestConnection(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.client.Ping(ctx, readpref.Primary()); err != nil {
		return classifyMongoError(querylens.ErrorKindConnection, err)
	}
	return nil
}

func (d *mongoDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.client.Disconnect(context.Background()); err != nil {
		return classifyMongoError(querylens.ErrorKindQuery, err)
	}
	return nil
}

func (d *mongoDriver) ExecuteQuery(ctx context.Context, query string) (*QueryResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd, err := parseMongoCommand(query)
	if err != nil {
		return nil, err
	}

	return d.runCommand(ctx, cmd)
}

func (d *mongoDriver) GetDatabases(ctx context.Context) ([]querylens.DatabaseInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	names, err := d.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, classifyMongoError(querylens.ErrorKindQuery, err)
	}
	sort.Strings(names)

	databases := make([]querylens.DatabaseInfo, 0, len(names))
	for _, name := range names {
		databases = append(databases, querylens.DatabaseInfo{Name: name})
	}

	return databases, nil
}

// GetSchemas reports the fixed "public" schema; MongoDB has no schema layer.
func (d *mongoDriver) GetSchemas(ctx context.Context) ([]querylens.SchemaInfo, error) {
	return []querylens.SchemaInfo{{Name: "public"}}, nil
}

func (d *mongoDriver) GetTables(ctx context.Context, schema string) ([]querylens.TableInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	db := d.client.Database(d.database)

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, classifyMongoError(querylens.ErrorKindQuery, err)
	}
	sort.Strings(names)

	tables := make([]querylens.TableInfo, 0, len(names))
	for _, name := range names {
		count, err := db.Collection(name).EstimatedDocumentCount(ctx)
		if err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}

		tables = append(tables, querylens.TableInfo{
			Name:     name,
			Schema:   "public",
			Type:     "COLLECTION",
			RowCount: count,
		})
	}

	return tables, nil
}

// GetTableSchema infers a column list by sampling one document. An empty
// collection reports a minimal schema containing only the identity field.
// Every collection has the implicit unique _id_ index.
func (d *mongoDriver) GetTableSchema(ctx context.Context, schema, table string) (*querylens.TableSchema, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := &querylens.TableSchema{
		Schema: "public",
		Name:   table,
		Indexes: []querylens.IndexInfo{
			{Name: "_id_", Columns: []string{"_id"}, IsUnique: true, IsPrimary: true},
		},
	}

	var sample bson.D

	err := d.client.Database(d.database).Collection(table).FindOne(ctx, bson.D{}).Decode(&sample)
	if errors.Is(err, mongo.ErrNoDocuments) {
		result.Columns = []querylens.ColumnInfo{
			{Name: "_id", DataType: "objectId", Nullable: false, IsPrimaryKey: true, OrdinalPosition: 1},
		}
		return result, nil
	}
	if err != nil {
		return nil, classifyMongoError(querylens.ErrorKindQuery, err)
	}

	for i, field := range sample {
		result.Columns = append(result.Columns, querylens.ColumnInfo{
			Name:            field.Key,
			DataType:        bsonTypeName(field.Value),
			Nullable:        field.Key != "_id",
			IsPrimaryKey:    field.Key == "_id",
			OrdinalPosition: i + 1,
		})
	}

	return result, nil
}

// bsonTypeName reports the BSON type name of a decoded value, in the
// vocabulary the mongo shell uses.
func bsonTypeName(v any) string {
	switch v.(type) {
	case primitive.ObjectID:
		return "objectId"
	case string:
		return "string"
	case int32:
		return "int"
	case int64:
		return "long"
	case float64:
		return "double"
	case bool:
		return "bool"
	case primitive.DateTime:
		return "date"
	case primitive.Decimal128:
		return "decimal"
	case bson.D, primitive.M:
		return "object"
	case bson.A:
		return "array"
	case primitive.Binary:
		return "binData"
	case nil:
		return "null"
	default:
		return "string"
	}
}

// convertBSONValue coerces a decoded BSON value into a JSON-compatible one.
// Binary payloads become a length-only placeholder string.
func convertBSONValue(v any) any {
	switch val := v.(type) {
	case bson.D:
		doc := make(map[string]any, len(val))
		for _, field := range val {
			doc[field.Key] = convertBSONValue(field.Value)
		}
		return doc
	case primitive.M:
		doc := make(map[string]any, len(val))
		for key, value := range val {
			doc[key] = convertBSONValue(value)
		}
		return doc
	case bson.A:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = convertBSONValue(item)
		}
		return items
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return formatTemporal(temporalTimestampTz, val.Time().UTC())
	case primitive.Decimal128:
		return coerceDecimal(val.String())
	case primitive.Binary:
		return fmt.Sprintf("<binary: %d bytes>", len(val.Data))
	case primitive.Timestamp:
		return fmt.Sprintf("Timestamp(%d, %d)", val.T, val.I)
	case float64:
		return coerceFloat(val)
	case int32, int64, string, bool, nil:
		return val
	default:
		return coerceFallback(v)
	}
}

// classifyMongoError maps a native error into the shared taxonomy. Error
// code 13 is Unauthorized, 18 is AuthenticationFailed.
func classifyMongoError(kind querylens.ErrorKind, err error) *querylens.Error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		code := strconv.Itoa(int(cmdErr.Code))
		if cmdErr.Code == 13 || cmdErr.Code == 18 {
			return querylens.WrapError(querylens.ErrorKindAuth, code, err)
		}
		return querylens.WrapError(kind, code, err)
	}

	return querylens.WrapError(kind, "", err)
}
