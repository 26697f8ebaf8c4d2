// internal/app/store/diaries/diarystore.go
package diarystore

import (
	"context"
	"time"

	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the slice of the diary subsystem the group registry needs:
// entries are keyed by their owning group.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("diary_entries")}
}

// Create inserts an entry, assigning its ID and timestamp.
func (s *Store) Create(ctx context.Context, e models.DiaryEntry) (models.DiaryEntry, error) {
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.DiaryEntry{}, err
	}
	return e, nil
}

// DeleteByGroup removes every entry belonging to groupID.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByGroup returns the number of entries in a group.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group": groupID})
}
