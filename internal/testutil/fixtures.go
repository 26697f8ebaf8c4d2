package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/sharediary/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given display name and email.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateGroup inserts an open group led by leaderID. Extra members are
// appended after the leader.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, leaderID primitive.ObjectID, members ...primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Leader:      leaderID,
		Members:     append([]primitive.ObjectID{leaderID}, members...),
		Invitations: []primitive.ObjectID{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateDiaryEntry inserts a diary entry belonging to groupID.
func (f *Fixtures) CreateDiaryEntry(ctx context.Context, groupID, authorID primitive.ObjectID, body string) models.DiaryEntry {
	f.t.Helper()

	entry := models.DiaryEntry{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("diary_entries").InsertOne(ctx, entry); err != nil {
		f.t.Fatalf("failed to create test diary entry: %v", err)
	}
	return entry
}
