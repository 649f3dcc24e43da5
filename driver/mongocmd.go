package driver

import (
	"context"
	"errors"
	"strings"

	querylens "github.com/querylens/querylens"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoOps is the closed set of operations the command grammar accepts.
var mongoOps = []string{
	"aggregate",
	"deleteMany",
	"deleteOne",
	"find",
	"findOne",
	"insertMany",
	"insertOne",
	"updateMany",
	"updateOne",
}

func isSupportedMongoOp(op string) bool {
	for _, supported := range mongoOps {
		if op == supported {
			return true
		}
	}
	return false
}

// mongoCommand is one parsed db.<collection>.<op>(<args>) invocation.
// Args are the raw extended-JSON argument texts, split at top level.
type mongoCommand struct {
	Collection string
	Op         string
	Args       []string
}

// parseMongoCommand validates the fixed command grammar. It does not parse
// the argument payloads; those are decoded per operation.
func parseMongoCommand(text string) (*mongoCommand, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, ";")
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "db.") {
		return nil, querylens.NewError(querylens.ErrorKindQuery, "",
			"command must have the form db.<collection>.<operation>(...)")
	}

	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, querylens.NewError(querylens.ErrorKindQuery, "",
			"command must have the form db.<collection>.<operation>(...)")
	}

	head := s[:open]
	dot := strings.LastIndexByte(head, '.')
	if dot < len("db.") {
		return nil, querylens.NewError(querylens.ErrorKindQuery, "",
			"command must have the form db.<collection>.<operation>(...)")
	}

	collection := head[len("db."):dot]
	op := head[dot+1:]

	if collection == "" || op == "" {
		return nil, querylens.NewError(querylens.ErrorKindQuery, "",
			"command must have the form db.<collection>.<operation>(...)")
	}

	if !isSupportedMongoOp(op) {
		return nil, querylens.NewErrorf(querylens.ErrorKindQuery,
			"unsupported operation %q: supported operations are %s", op, strings.Join(mongoOps, ", "))
	}

	return &mongoCommand{
		Collection: collection,
		Op:         op,
		Args:       splitTopLevelArgs(s[open+1 : len(s)-1]),
	}, nil
}

// splitTopLevelArgs splits an argument list on commas that sit outside any
// brackets or string literals.
func splitTopLevelArgs(text string) []string {
	var args []string

	depth := 0
	start := 0

	i := 0
	for i < len(text) {
		switch text[i] {
		case '\'', '"':
			i = skipQuoted(text, i, text[i])
			continue
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
		i++
	}

	if last := strings.TrimSpace(text[start:]); last != "" {
		args = append(args, last)
	}

	return args
}

func (d *mongoDriver) runCommand(ctx context.Context, cmd *mongoCommand) (*QueryResult, error) {
	coll := d.client.Database(d.database).Collection(cmd.Collection)

	switch cmd.Op {
	case "find":
		filter, err := argDocument(cmd.Args, 0)
		if err != nil {
			return nil, err
		}

		findOpts := options.Find()
		if len(cmd.Args) > 1 {
			projection, err := argDocument(cmd.Args, 1)
			if err != nil {
				return nil, err
			}
			findOpts.SetProjection(projection)
		}

		cursor, err := coll.Find(ctx, filter, findOpts)
		if err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}
		return drainCursor(ctx, cursor)

	case "findOne":
		filter, err := argDocument(cmd.Args, 0)
		if err != nil {
			return nil, err
		}

		var doc bson.D

		err = coll.FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewDataResult(nil, nil), nil
		}
		if err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}
		return documentsToResult([]bson.D{doc}), nil

	case "insertOne":
		doc, err := requiredArgDocument(cmd.Args, 0, "insertOne requires a document argument")
		if err != nil {
			return nil, err
		}

		if _, err := coll.InsertOne(ctx, doc); err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}
		return NewAffectedResult(1), nil

	case "insertMany":
		docs, err := argArray(cmd.Args, 0, "insertMany requires an array of documents")
		if err != nil {
			return nil, err
		}

		res, err := coll.InsertMany(ctx, docs)
		if err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}
		return NewAffectedResult(int64(len(res.InsertedIDs))), nil

	case "updateOne", "updateMany":
		filter, err := requiredArgDocument(cmd.Args, 0, cmd.Op+" requires filter and update arguments")
		if err != nil {
			return nil, err
		}
		update, err := requiredArgDocument(cmd.Args, 1, cmd.Op+" requires filter and update arguments")
		if err != nil {
			return nil, err
		}

		var res *mongo.UpdateResult
		if cmd.Op == "updateOne" {
			res, err = coll.UpdateOne(ctx, filter, update)
		} else {
			res, err = coll.UpdateMany(ctx, filter, update)
		}
		if err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}
		return NewAffectedResult(res.ModifiedCount + res.UpsertedCount), nil

	case "deleteOne", "deleteMany":
		filter, err := requiredArgDocument(cmd.Args, 0, cmd.Op+" requires a filter argument")
		if err != nil {
			return nil, err
		}

		var res *mongo.DeleteResult
		if cmd.Op == "deleteOne" {
			res, err = coll.DeleteOne(ctx, filter)
		} else {
			res, err = coll.DeleteMany(ctx, filter)
		}
		if err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}
		return NewAffectedResult(res.DeletedCount), nil

	case "aggregate":
		pipeline, err := argArray(cmd.Args, 0, "aggregate requires a pipeline array")
		if err != nil {
			return nil, err
		}

		cursor, err := coll.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}
		return drainCursor(ctx, cursor)

	default:
		return nil, querylens.NewErrorf(querylens.ErrorKindQuery,
			"unsupported operation %q: supported operations are %s", cmd.Op, strings.Join(mongoOps, ", "))
	}
}

// argDocument decodes the i-th argument as a document, defaulting to the
// empty document when the argument is absent.
func argDocument(args []string, i int) (bson.D, error) {
	if i >= len(args) {
		return bson.D{}, nil
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(args[i]), false, &doc); err != nil {
		return nil, querylens.NewErrorf(querylens.ErrorKindQuery, "invalid document argument: %s", err.Error())
	}

	return doc, nil
}

func requiredArgDocument(args []string, i int, missing string) (bson.D, error) {
	if i >= len(args) {
		return nil, querylens.NewError(querylens.ErrorKindQuery, "", missing)
	}
	return argDocument(args, i)
}

// argArray decodes the i-th argument as an array of documents. Extended JSON
// decoding needs a document at the top level, so the array is wrapped first.
func argArray(args []string, i int, missing string) ([]any, error) {
	if i >= len(args) {
		return nil, querylens.NewError(querylens.ErrorKindQuery, "", missing)
	}

	var wrapper struct {
		Items bson.A `bson:"items"`
	}

	wrapped := `{"items": ` + args[i] + `}`
	if err := bson.UnmarshalExtJSON([]byte(wrapped), false, &wrapper); err != nil {
		return nil, querylens.NewErrorf(querylens.ErrorKindQuery, "invalid array argument: %s", err.Error())
	}

	items := make([]any, len(wrapper.Items))
	copy(items, wrapper.Items)

	return items, nil
}

func drainCursor(ctx context.Context, cursor *mongo.Cursor) (*QueryResult, error) {
	defer cursor.Close(ctx)

	var docs []bson.D

	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, classifyMongoError(querylens.ErrorKindQuery, err)
		}
		docs = append(docs, doc)
	}

	if err := cursor.Err(); err != nil {
		return nil, classifyMongoError(querylens.ErrorKindQuery, err)
	}

	return documentsToResult(docs), nil
}

// documentsToResult reshapes documents into the tabular result. Columns are
// the union of field names in first-seen order; fields a document lacks are
// nil in its row.
func documentsToResult(docs []bson.D) *QueryResult {
	var columns []string

	columnIndex := map[string]int{}
	for _, doc := range docs {
		for _, field := range doc {
			if _, ok := columnIndex[field.Key]; !ok {
				columnIndex[field.Key] = len(columns)
				columns = append(columns, field.Key)
			}
		}
	}

	rows := make([][]any, 0, len(docs))
	for _, doc := range docs {
		row := make([]any, len(columns))
		for _, field := range doc {
			row[columnIndex[field.Key]] = convertBSONValue(field.Value)
		}
		rows = append(rows, row)
	}

	return NewDataResult(columns, rows)
}
