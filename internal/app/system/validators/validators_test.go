package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/sharediary/internal/app/system/validators"
	"github.com/dalemusser/sharediary/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := validators.EnsureAll(ctx, db); err != nil {
			t.Fatalf("EnsureAll #%d failed: %v", i+1, err)
		}
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "groups", "diary_entries"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	leader := primitive.NewObjectID()
	other := primitive.NewObjectID()
	now := time.Now().UTC()

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"user ok", "users", bson.M{"full_name": "Ann", "email": "ann@example.com"}, false},
		{"user missing email", "users", bson.M{"full_name": "Ann"}, true},
		{"user blank name", "users", bson.M{"full_name": "   ", "email": "b@example.com"}, true},

		{"group ok", "groups", bson.M{
			"name": "G", "name_ci": "g", "leader": leader,
			"members": bson.A{leader}, "invitations": bson.A{other},
			"password": nil, "version": int64(1),
		}, false},
		{"group without members", "groups", bson.M{
			"name": "G", "name_ci": "g", "leader": leader,
			"members": bson.A{}, "invitations": bson.A{}, "version": int64(1),
		}, true},
		{"group duplicate invitations", "groups", bson.M{
			"name": "G", "name_ci": "g", "leader": leader,
			"members": bson.A{leader}, "invitations": bson.A{other, other}, "version": int64(1),
		}, true},
		{"group missing version", "groups", bson.M{
			"name": "G", "name_ci": "g", "leader": leader,
			"members": bson.A{leader}, "invitations": bson.A{},
		}, true},

		{"entry ok", "diary_entries", bson.M{"group": leader, "author_id": leader, "body": "hi", "created_at": now}, false},
		{"entry without group", "diary_entries", bson.M{"author_id": leader, "created_at": now}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
