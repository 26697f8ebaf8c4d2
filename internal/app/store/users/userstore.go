package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sharediary/internal/app/system/normalize"
	"github.com/dalemusser/sharediary/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errNameRequired   = errors.New("full name is required")
	errEmailRequired  = errors.New("email is required")
)

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.FullName == "" {
		return models.User{}, errNameRequired
	}
	if u.Email == "" {
		return models.User{}, errEmailRequired
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmails returns the users whose email matches one of emails
// (case-insensitive). Unknown addresses are simply absent from the result.
func (s *Store) FindByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	norm := normalize.Emails(emails)
	if len(norm) == 0 {
		return []models.User{}, nil
	}
	return s.find(ctx, bson.M{"email": bson.M{"$in": norm}})
}

// Resolve loads display data for ids, keyed by ID. Missing users are
// simply absent from the map.
func (s *Store) Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	proj := options.Find().SetProjection(bson.M{
		"_id":          1,
		"full_name":    1,
		"full_name_ci": 1,
		"email":        1,
	})
	cur, err := s.c.Find(ctx, filter, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
