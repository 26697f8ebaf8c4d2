// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the app's collections when missing and attaches their
// JSON-Schema validators. Deployments without collMod support (some
// DocumentDB versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing := map[string]bool{}
	if names, err := db.ListCollectionNames(ctx, bson.M{}); err == nil {
		for _, n := range names {
			existing[n] = true
		}
	}

	var problems []string
	for _, c := range []struct {
		name   string
		schema bson.M
	}{
		{"users", usersSchema()},
		{"groups", groupsSchema()},
		{"diary_entries", diaryEntriesSchema()},
	} {
		if !existing[c.name] {
			if err := createCollection(ctx, db, c.name); err != nil {
				problems = append(problems, c.name+": "+err.Error())
				continue
			}
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if isUnsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.name))
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func createCollection(ctx context.Context, db *mongo.Database, name string) error {
	err := db.CreateCollection(ctx, name)
	if err != nil && !isNamespaceExists(err) {
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	if err == nil {
		zap.L().Info("created collection", zap.String("collection", name))
	}
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

// server codes: 48 NamespaceExists, 59 CommandNotFound, 115 CommandNotSupported
func isNamespaceExists(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 48 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

func isUnsupported(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || ce.Code == 115) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "no such command") ||
		strings.Contains(s, "not implemented") ||
		strings.Contains(s, "not supported")
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "email"},
			"properties": bson.M{
				"full_name":    nonBlank,
				"full_name_ci": bson.M{"bsonType": "string"},
				"email":        nonBlank,
			},
		},
	}
}

// The roster arrays and the password field are what every registry
// transition writes, so they are pinned down here as well.
func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "leader", "members", "invitations", "version"},
			"properties": bson.M{
				"name":        nonBlank,
				"name_ci":     bson.M{"bsonType": "string"},
				"leader":      bson.M{"bsonType": "objectId"},
				"members":     bson.M{"bsonType": "array", "minItems": 1, "uniqueItems": true, "items": bson.M{"bsonType": "objectId"}},
				"invitations": bson.M{"bsonType": "array", "uniqueItems": true, "items": bson.M{"bsonType": "objectId"}},
				"password":    bson.M{"bsonType": bson.A{"string", "null"}},
				"version":     bson.M{"bsonType": "long", "minimum": 1},
			},
		},
	}
}

func diaryEntriesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group", "author_id", "created_at"},
			"properties": bson.M{
				"group":      bson.M{"bsonType": "objectId"},
				"author_id":  bson.M{"bsonType": "objectId"},
				"body":       bson.M{"bsonType": "string"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
