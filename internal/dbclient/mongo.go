package dbclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"pagebuilder/internal/domain"
)

// mongoConnector implements Connector for MongoDB.
type mongoConnector struct {
	client *mongo.Client
	dbName string
}

// mongoQuery is the JSON document accepted as a MongoDB query.
type mongoQuery struct {
	Collection string         `json:"collection"`
	Operation  string         `json:"operation,omitempty"` // find (default) or aggregate
	Filter     map[string]any `json:"filter,omitempty"`
	Projection map[string]any `json:"projection,omitempty"`
	Sort       map[string]any `json:"sort,omitempty"`
	Pipeline   []any          `json:"pipeline,omitempty"`
}

// mongoURI builds the connection string and resolves the database name.
func mongoURI(conn *domain.DatabaseConnection, password string) (uri, dbName string) {
	if strings.HasPrefix(conn.Host, "mongodb+srv://") || strings.HasPrefix(conn.Host, "mongodb://") {
		uri = conn.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", password)
			uri = strings.ReplaceAll(uri, "<db_password>", password)
		}
	} else {
		port := conn.Port
		if port == 0 {
			port = 27017
		}
		if conn.Username != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", conn.Username, password, conn.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", conn.Host, port)
		}
		if conn.ExtraJSON != "" && conn.ExtraJSON != "{}" {
			var extras map[string]string
			if json.Unmarshal([]byte(conn.ExtraJSON), &extras) == nil && len(extras) > 0 {
				keys := make([]string, 0, len(extras))
				for k := range extras {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				params := make([]string, len(keys))
				for i, k := range keys {
					params[i] = k + "=" + extras[k]
				}
				uri += "/?" + strings.Join(params, "&")
			}
		}
	}

	dbName = conn.Database
	if dbName == "" {
		rest := uri[strings.Index(uri, "://")+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			rest = rest[at+1:]
		}
		if slash := strings.Index(rest, "/"); slash != -1 {
			path := rest[slash+1:]
			if q := strings.Index(path, "?"); q != -1 {
				path = path[:q]
			}
			dbName = path
		}
	}
	if dbName == "" {
		dbName = "test"
	}
	return uri, dbName
}

func newMongoConnector(conn *domain.DatabaseConnection, password string) (*mongoConnector, error) {
	uri, dbName := mongoURI(conn, password)
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoConnector{client: client, dbName: dbName}, nil
}

// unmarshalEJSON converts MongoDB Extended JSON values ($oid, $date, ...) in
// field to their BSON types.
func unmarshalEJSON(field map[string]any) (any, error) {
	if field == nil {
		return bson.D{}, nil
	}
	raw, err := json.Marshal(field)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("parse extended json: %w", err)
	}
	return doc, nil
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoConnector) Query(ctx context.Context, query string, limit int) (*Rows, error) {
	var mq mongoQuery
	if err := json.Unmarshal([]byte(query), &mq); err != nil {
		return nil, fmt.Errorf("parse mongo query: %w", err)
	}
	if mq.Collection == "" {
		return nil, fmt.Errorf("mongo query requires 'collection'")
	}
	limit = clampLimit(limit)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	coll := m.client.Database(m.dbName).Collection(mq.Collection)
	var cursor *mongo.Cursor
	switch op := strings.ToLower(mq.Operation); op {
	case "", "find":
		filter, err := unmarshalEJSON(mq.Filter)
		if err != nil {
			return nil, err
		}
		opts := options.Find().SetLimit(int64(limit + 1))
		if mq.Projection != nil {
			opts.SetProjection(mq.Projection)
		}
		if mq.Sort != nil {
			opts.SetSort(mq.Sort)
		}
		if cursor, err = coll.Find(ctx, filter, opts); err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}
	case "aggregate":
		pipeline := mq.Pipeline
		if pipeline == nil {
			pipeline = []any{}
		}
		var err error
		if cursor, err = coll.Aggregate(ctx, pipeline); err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
	default:
		return nil, fmt.Errorf("operation %q: %w", op, ErrWriteQuery)
	}
	defer cursor.Close(ctx)

	out := &Rows{Records: []map[string]any{}}
	seen := map[string]bool{}
	for cursor.Next(ctx) {
		if len(out.Records) == limit {
			out.Truncated = true
			break
		}
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		rec := make(map[string]any, len(doc))
		for _, elem := range doc {
			rec[elem.Key] = normalizeBSON(elem.Value)
			if !seen[elem.Key] {
				seen[elem.Key] = true
				out.Columns = append(out.Columns, elem.Key)
			}
		}
		out.Records = append(out.Records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	sortColumns(out.Columns)
	return out, nil
}

// sortColumns orders _id first, then alphabetically.
func sortColumns(columns []string) {
	sort.SliceStable(columns, func(i, j int) bool {
		if columns[i] == "_id" {
			return columns[j] != "_id"
		}
		if columns[j] == "_id" {
			return false
		}
		return columns[i] < columns[j]
	})
}

// normalizeBSON converts BSON values into plain JSON-friendly ones.
func normalizeBSON(v any) any {
	switch val := v.(type) {
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case bson.D:
		out := make(map[string]any, len(val))
		for _, elem := range val {
			out[elem.Key] = normalizeBSON(elem.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeBSON(item)
		}
		return out
	default:
		return val
	}
}

func (m *mongoConnector) Introspect(ctx context.Context) (*SchemaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db := m.client.Database(m.dbName)
	collections, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(collections)

	schema := &SchemaInfo{}
	for _, name := range collections {
		info := TableInfo{Name: name}
		var doc bson.M
		if err := db.Collection(name).FindOne(ctx, bson.M{}).Decode(&doc); err == nil {
			for k, v := range doc {
				info.Columns = append(info.Columns, ColumnInfo{Name: k, Type: fmt.Sprintf("%T", v)})
			}
			sort.Slice(info.Columns, func(i, j int) bool { return info.Columns[i].Name < info.Columns[j].Name })
		}
		schema.Tables = append(schema.Tables, info)
	}
	return schema, nil
}

func (m *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
