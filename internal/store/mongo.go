package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one MongoDB collection per store collection. Documents
// carry a UUIDv7 string _id, so sorting by _id keeps insertion order.
type MongoStore struct {
	db       *mongo.Database
	verifier TokenVerifier
}

func NewMongoStore(db *mongo.Database, verifier TokenVerifier) *MongoStore {
	return &MongoStore{db: db, verifier: verifier}
}

func (s *MongoStore) Push(ctx context.Context, collection string, record any, token string) (string, error) {
	if err := checkToken(s.verifier, token); err != nil {
		return "", err
	}

	doc, err := toDocument(record)
	if err != nil {
		return "", fmt.Errorf("store: %s: %w", collection, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	doc["_id"] = id.String()

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("store: insert %s: %w", collection, err)
	}
	return id.String(), nil
}

func (s *MongoStore) Get(ctx context.Context, collection string, token string) (Snapshot, error) {
	if err := checkToken(s.verifier, token); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	snap := Snapshot{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", collection, err)
		}
		item, err := fromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("store: %s: %w", collection, err)
		}
		snap = append(snap, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate %s: %w", collection, err)
	}
	return snap, nil
}

// toDocument converts a record to BSON through its JSON form, so field names
// follow the json tags. Any "id" field is dropped; _id is the key.
func toDocument(record any) (bson.M, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("convert record: %w", err)
	}
	delete(doc, "id")
	return doc, nil
}

// fromDocument turns a stored document back into a snapshot item. Relaxed
// extended JSON keeps numbers and booleans as plain JSON values.
func fromDocument(doc bson.M) (Item, error) {
	key, _ := doc["_id"].(string)
	delete(doc, "_id")

	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return Item{}, fmt.Errorf("convert document: %w", err)
	}
	return Item{Key: key, Value: raw}, nil
}

var _ Store = (*MongoStore)(nil)
