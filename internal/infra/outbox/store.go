package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "venuecal/internal/app/outbox"
	"venuecal/internal/domain/shared/events"
)

const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"

	// claimTimeout releases records held by a worker that died mid-publish.
	claimTimeout = time.Minute
	// sentRetention bounds how long delivered records stay for inspection.
	sentRetention = 7 * 24 * time.Hour

	collectionName = "venuecal_outbox"
)

// Store is the Mongo-backed outbox. Calendar and selection handlers Add
// records; the Worker claims them one at a time in occurrence order.
type Store struct {
	col *mongo.Collection
	now func() time.Time
}

func NewStore(db *mongo.Database) *Store {
	col := db.Collection(collectionName)
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}},
		{Keys: bson.D{{Key: "aggregate", Value: 1}, {Key: "occurred_at", Value: 1}}},
		// Documents without sent_at are never expired.
		{Keys: bson.D{{Key: "sent_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32(sentRetention.Seconds()))},
	})
	return &Store{col: col, now: func() time.Time { return time.Now().UTC() }}
}

// EventDocument is the stored form of an EventRecord plus its delivery state.
type EventDocument struct {
	ID            string            `bson:"_id"`
	Name          string            `bson:"name"`
	AggregateType string            `bson:"aggregate_type"`
	Aggregate     string            `bson:"aggregate"`
	Payload       []byte            `bson:"payload"`
	OccurredAt    time.Time         `bson:"occurred_at"`
	Headers       map[string]string `bson:"headers,omitempty"`
	State         string            `bson:"state"`
	Attempts      int               `bson:"attempts"`
	NextAttempt   time.Time         `bson:"next_attempt_at"`
	ClaimedBy     string            `bson:"claimed_by,omitempty"`
	ClaimedAt     time.Time         `bson:"claimed_at,omitempty"`
	SentAt        time.Time         `bson:"sent_at,omitempty"`
	LastError     string            `bson:"last_error,omitempty"`
}

func newEventDocument(rec appoutbox.EventRecord, now time.Time) EventDocument {
	return EventDocument{
		ID:            rec.ID,
		Name:          rec.Name,
		AggregateType: events.AggregateType(rec.Name),
		Aggregate:     rec.Aggregate,
		Payload:       rec.Payload,
		OccurredAt:    rec.OccurredAt,
		Headers:       rec.Headers,
		State:         stateNew,
		NextAttempt:   now,
	}
}

// Add ignores a record whose id is already stored, so a retried handler does
// not publish the same event twice.
func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	_, err := s.col.InsertOne(ctx, newEventDocument(record, s.now()))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := s.now()
	filter := bson.M{"$or": bson.A{
		bson.M{"state": bson.M{"$in": bson.A{stateNew, stateFailed}}, "next_attempt_at": bson.M{"$lte": now}},
		bson.M{"state": stateClaimed, "claimed_at": bson.M{"$lte": now.Add(-claimTimeout)}},
	}}
	update := bson.M{"$set": bson.M{"state": stateClaimed, "claimed_by": workerID, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	var doc EventDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"state": stateSent, "sent_at": s.now()},
		"$inc":   bson.M{"attempts": 1},
		"$unset": bson.M{"last_error": ""},
	})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"state": stateFailed, "next_attempt_at": next, "last_error": errMsg},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

var (
	_ appoutbox.Outbox = (*Store)(nil)
	_ Queue            = (*Store)(nil)
)
