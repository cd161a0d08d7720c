package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

const collectionMissionEvents = "mission_events"

// auditDoc is the stored shape of a lifecycle event. Prices are kept as
// strings so no precision is lost.
type auditDoc struct {
	MissionID  int64     `bson:"mission_id"`
	Event      string    `bson:"event"`
	From       string    `bson:"from,omitempty"`
	To         string    `bson:"to"`
	ActorEmail string    `bson:"actor_email"`
	ActorRole  string    `bson:"actor_role"`
	Price      string    `bson:"price,omitempty"`
	IsPaid     bool      `bson:"is_paid"`
	OccurredAt time.Time `bson:"occurred_at"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// AuditRepository implements ports.AuditRepository on the mission_events collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionMissionEvents)}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

// InsertEvent appends one lifecycle event to the audit trail.
func (r *AuditRepository) InsertEvent(ctx context.Context, ev *domain.MissionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toAuditDoc(ev, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListEvents returns the trail of a mission in the order it happened.
func (r *AuditRepository) ListEvents(ctx context.Context, missionID int64) ([]domain.MissionEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"mission_id": missionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	events := make([]domain.MissionEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, fromAuditDoc(d))
	}
	return events, nil
}

// EnsureIndexes creates the indexes used by ListEvents.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "mission_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
		{Keys: bson.D{{Key: "actor_email", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toAuditDoc(ev *domain.MissionEvent, recordedAt time.Time) auditDoc {
	d := auditDoc{
		MissionID:  ev.MissionID,
		Event:      ev.Event,
		From:       string(ev.From),
		To:         string(ev.To),
		ActorEmail: ev.ActorEmail,
		ActorRole:  string(ev.ActorRole),
		IsPaid:     ev.IsPaid,
		OccurredAt: ev.OccurredAt.UTC(),
		RecordedAt: recordedAt,
	}
	if ev.Price.Valid {
		d.Price = ev.Price.Decimal.String()
	}
	return d
}

func fromAuditDoc(d auditDoc) domain.MissionEvent {
	ev := domain.MissionEvent{
		MissionID:  d.MissionID,
		Event:      d.Event,
		From:       domain.MissionStatus(d.From),
		To:         domain.MissionStatus(d.To),
		ActorEmail: d.ActorEmail,
		ActorRole:  domain.Role(d.ActorRole),
		IsPaid:     d.IsPaid,
		OccurredAt: d.OccurredAt,
	}
	if price, err := decimal.NewFromString(d.Price); err == nil && d.Price != "" {
		ev.Price = decimal.NewNullDecimal(price)
	}
	return ev
}
