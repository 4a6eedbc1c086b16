// Package mongostore provides a session.Store backed by a MongoDB collection.
//
// Each session is one document keyed by its identifier. A TTL index on
// expires_at lets the server delete expired documents; Load also filters
// them, since the TTL monitor only runs about once a minute.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/serversession/core/session"
)

// DefaultCollection is the collection name used by the demo service.
const DefaultCollection = "sessions"

type document struct {
	ID        string     `bson:"_id"`
	Entries   []byte     `bson:"entries"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// Store is a MongoDB-backed session.Store.
type Store struct {
	coll *mongo.Collection
}

var _ session.Store = (*Store)(nil)

// New creates a store on coll and ensures the TTL index exists.
func New(ctx context.Context, coll *mongo.Collection) (*Store, error) {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, err
	}
	return &Store{coll: coll}, nil
}

// Load implements session.Store.
func (s *Store) Load(ctx context.Context, id string) (session.Entries, bool, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": time.Now()}},
		},
	}

	var doc document
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var entries session.Entries
	if err := entries.UnmarshalBinary(doc.Entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Update implements session.Store.
func (s *Store) Update(ctx context.Context, id string, entries session.Entries, ttl time.Duration) error {
	data, err := entries.MarshalBinary()
	if err != nil {
		return err
	}

	now := time.Now()
	doc := document{ID: id, Entries: data, UpdatedAt: now}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		doc.ExpiresAt = &expiresAt
	}

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

// Remove implements session.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
