package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"venuecal/internal/app/middleware"
)

const (
	idempotencyCollection = "venuecal_idempotency"
	defaultIdempotencyTTL = 7 * 24 * time.Hour
)

// errReservationLost means the document expired between the failed insert and
// the read that followed; the caller retries.
var errReservationLost = errors.New("idempotency record vanished")

// IdempotencyStore remembers the outcome of keyed commands, which also
// deduplicates booking events redelivered by Kafka. Each document carries its
// own expiry, so changing the TTL does not require rebuilding the index.
type IdempotencyStore struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewIdempotencyStore(db *mongo.Database, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	col := db.Collection(idempotencyCollection)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "expire_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return &IdempotencyStore{col: col, ttl: ttl}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var doc idempotencyDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, err
	}
	return doc.toRecord(), true, nil
}

// Reserve inserts a pending document unless one exists for the key. An
// abandoned pending document is taken over with a conditional update, so only
// one of several racing deliveries wins it.
func (s *IdempotencyStore) Reserve(ctx context.Context, rec middleware.IdempotencyRecord, staleBefore time.Time) (middleware.IdempotencyRecord, bool, error) {
	doc := newIdempotencyDocument(rec, s.ttl)
	res, err := s.col.UpdateByID(ctx, doc.Key, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	switch {
	case err != nil && !mongo.IsDuplicateKeyError(err):
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("reserve %s: %w", doc.Key, err)
	case err == nil && res.UpsertedCount == 1:
		return rec, true, nil
	}

	takeover, err := s.col.UpdateOne(ctx,
		bson.M{"_id": doc.Key, "pending": true, "occurred_at": bson.M{"$lt": staleBefore}},
		bson.M{"$set": bson.M{"occurred_at": doc.OccurredAt, "expire_at": doc.ExpireAt}})
	if err != nil {
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("take over %s: %w", doc.Key, err)
	}
	if takeover.ModifiedCount == 1 {
		return rec, true, nil
	}

	existing, found, err := s.Get(ctx, doc.Key)
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	if !found {
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("reserve %s: %w", doc.Key, errReservationLost)
	}
	return existing, false, nil
}

// Save overwrites the reservation with the outcome.
func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	doc := newIdempotencyDocument(rec, s.ttl)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	return err
}

// Release deletes the key only while it is still pending.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": key, "pending": true})
	return err
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)

type idempotencyDocument struct {
	Key        string    `bson:"_id"`
	Command    string    `bson:"command"`
	Payload    []byte    `bson:"payload,omitempty"`
	Pending    bool      `bson:"pending,omitempty"`
	Error      string    `bson:"error,omitempty"`
	ErrorKind  string    `bson:"error_kind,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
	ExpireAt   time.Time `bson:"expire_at"`
}

func newIdempotencyDocument(rec middleware.IdempotencyRecord, ttl time.Duration) idempotencyDocument {
	at := rec.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	command, _, _ := strings.Cut(rec.Key, ":")
	return idempotencyDocument{
		Key:        rec.Key,
		Command:    command,
		Pending:    rec.Pending,
		Payload:    rec.Payload,
		Error:      rec.Error,
		ErrorKind:  rec.ErrorKind,
		OccurredAt: at,
		ExpireAt:   at.Add(ttl),
	}
}

func (d idempotencyDocument) toRecord() middleware.IdempotencyRecord {
	return middleware.IdempotencyRecord{
		Key:        d.Key,
		Pending:    d.Pending,
		Payload:    d.Payload,
		Error:      d.Error,
		ErrorKind:  d.ErrorKind,
		OccurredAt: d.OccurredAt,
	}
}
