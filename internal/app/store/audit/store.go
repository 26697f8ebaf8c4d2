// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Membership event types
const (
	EventGroupCreated        = "group_created"
	EventGroupDeleted        = "group_deleted"
	EventMembersInvited      = "members_invited"
	EventInviteAccepted      = "invite_accepted"
	EventInviteRejected      = "invite_rejected"
	EventMemberRemoved       = "member_removed"
	EventMemberLeft          = "member_left"
	EventPasswordChanged     = "group_password_changed"
	EventPasswordCheckFailed = "group_password_check_failed"
)

// Event is one recorded change to a group's membership or access gate.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
	EventType string             `bson:"event_type"`

	GroupID  primitive.ObjectID  `bson:"group_id"`
	ActorID  *primitive.ObjectID `bson:"actor_id,omitempty"`  // who performed the action
	TargetID *primitive.ObjectID `bson:"target_id,omitempty"` // affected member, when not the actor

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter narrows Query. Zero fields are ignored.
type QueryFilter struct {
	GroupID   *primitive.ObjectID
	ActorID   *primitive.ObjectID
	EventType string
	Since     *time.Time
	Limit     int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns matching events, most recent first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := bson.M{}
	if filter.GroupID != nil {
		query["group_id"] = *filter.GroupID
	}
	if filter.ActorID != nil {
		query["actor_id"] = *filter.ActorID
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.Since != nil {
		query["timestamp"] = bson.M{"$gte": *filter.Since}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListByGroup retrieves recent events for one group.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{GroupID: &groupID, Limit: limit})
}
