package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo maps each collection to a MongoDB collection keyed by string _id.
// Field commands become a single $set, which MongoDB applies per path.
type Mongo struct {
	db *mongo.Database
}

// NewMongo wraps a database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromBSON(raw), nil
}

func (m *Mongo) List(ctx context.Context, collection string) ([]Document, error) {
	cur, err := m.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, fromBSON(raw))
	}
	return docs, cur.Err()
}

func (m *Mongo) Create(ctx context.Context, collection string, doc Document) (string, error) {
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	b, err := body(doc)
	if err != nil {
		return "", err
	}
	b["_id"] = id
	if _, err := m.db.Collection(collection).InsertOne(ctx, map[string]any(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrExists
		}
		return "", err
	}
	return id, nil
}

func (m *Mongo) Set(ctx context.Context, collection, id string, doc Document) error {
	b, err := body(doc)
	if err != nil {
		return err
	}
	_, err = m.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, map[string]any(b), options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) Update(ctx context.Context, collection, id string, fields ...Field) error {
	if err := ValidatePaths(fields...); err != nil {
		return err
	}
	set := bson.M{}
	for _, f := range fields {
		v, err := jsonValue(f.Value)
		if err != nil {
			return err
		}
		set[f.Path] = v
	}
	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func fromBSON(raw bson.M) Document {
	doc, _ := bsonValue(raw).(map[string]any)
	if doc == nil {
		doc = map[string]any{}
	}
	id := fmt.Sprint(doc["_id"])
	delete(doc, "_id")
	return withID(Document(doc), id)
}

// bsonValue converts decoded BSON into the shapes encoding/json would produce.
func bsonValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return bsonMap(t)
	case map[string]any:
		return bsonMap(t)
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = bsonValue(e.Value)
		}
		return out
	case bson.A:
		return bsonSlice(t)
	case []any:
		return bsonSlice(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return t.Hex()
	}
	return v
}

func bsonMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = bsonValue(v)
	}
	return out
}

func bsonSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = bsonValue(v)
	}
	return out
}
