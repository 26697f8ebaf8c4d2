// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sharediary/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrVersionConflict is returned by Save when the stored document changed
// after the caller read it.
var ErrVersionConflict = errors.New("group was modified concurrently")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// GetByID returns mongo.ErrNoDocuments when the group does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Create assigns the ID, folded name, first version and timestamps.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.Version = 1
	if g.Members == nil {
		g.Members = []primitive.ObjectID{}
	}
	if g.Invitations == nil {
		g.Invitations = []primitive.ObjectID{}
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Save replaces the whole document if, and only if, the stored version
// still equals g.Version. The returned group carries the bumped version.
// A vanished document yields mongo.ErrNoDocuments; a newer version yields
// ErrVersionConflict.
func (s *Store) Save(ctx context.Context, g models.Group) (models.Group, error) {
	expected := g.Version
	g.Version = expected + 1
	g.NameCI = text.Fold(g.Name)
	g.UpdatedAt = time.Now().UTC()
	if g.Members == nil {
		g.Members = []primitive.ObjectID{}
	}
	if g.Invitations == nil {
		g.Invitations = []primitive.ObjectID{}
	}

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": g.ID, "version": expected}, g)
	if err != nil {
		return models.Group{}, err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": g.ID})
		if err != nil {
			return models.Group{}, err
		}
		if n == 0 {
			return models.Group{}, mongo.ErrNoDocuments
		}
		return models.Group{}, ErrVersionConflict
	}
	return g, nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByMember returns the groups whose roster contains userID, by name.
func (s *Store) ListByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	return s.find(ctx, bson.M{"members": userID})
}

// ListByInvitee returns the groups with a pending invitation for userID.
func (s *Store) ListByInvitee(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	return s.find(ctx, bson.M{"invitations": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
