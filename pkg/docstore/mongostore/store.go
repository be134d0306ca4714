// Package mongostore - реализация docstore.Store поверх MongoDB.
// id документа хранится в _id строкой (uuid), остальные поля - как есть.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"gear-guard/pkg/docstore"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", wrapErr(err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", wrapErr(err))
	}
	logger.Info("✅ Подключено к MongoDB", zap.String("database", database))
	return &Store{client: client, db: client.Database(database), logger: logger}, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Snapshot, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, docstore.ErrNotFound
		}
		return nil, wrapErr(err)
	}
	return toSnapshot(raw), nil
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	filter := bson.M{}
	for _, f := range q.Filters {
		switch f.Op {
		case docstore.OpEq:
			filter[f.Field] = f.Value
		case docstore.OpIn:
			filter[f.Field] = bson.M{"$in": f.Value}
		}
	}

	opts := options.Find()
	if len(q.OrderBy) > 0 {
		sort := bson.D{}
		for _, o := range q.OrderBy {
			dir := 1
			if o.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: o.Field, Value: dir})
		}
		opts.SetSort(sort)
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.db.Collection(q.Collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrapErr(err)
	}

	out := make([]docstore.Snapshot, 0, len(rows))
	for _, raw := range rows {
		out = append(out, *toSnapshot(raw))
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, collection string, data docstore.Document) (string, error) {
	id := uuid.NewString()
	doc := toBSON(data)
	doc["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", wrapErr(err)
	}
	return id, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, data docstore.Document) error {
	_, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": toBSON(data)},
		options.Update().SetUpsert(true),
	)
	return wrapErr(err)
}

func (s *Store) Merge(ctx context.Context, collection, id string, patch docstore.Document) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": toBSON(patch)})
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return wrapErr(s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toBSON(data docstore.Document) bson.M {
	out := bson.M{}
	for k, v := range data {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}

func toSnapshot(raw bson.M) *docstore.Snapshot {
	snap := &docstore.Snapshot{Data: docstore.Document{}}
	for k, v := range raw {
		if k == "_id" {
			snap.ID = fmt.Sprint(v)
			continue
		}
		snap.Data[k] = fromBSON(v)
	}
	return snap
}

func fromBSON(v any) any {
	switch val := v.(type) {
	case primitive.A:
		out := make([]any, len(val))
		for i := range val {
			out[i] = fromBSON(val[i])
		}
		return out
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = fromBSON(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return v
	}
}

// wrapErr помечает сетевые ошибки и таймауты как docstore.ErrUnavailable.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) ||
		strings.Contains(strings.ToLower(err.Error()), "server selection") {
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}
	return err
}
