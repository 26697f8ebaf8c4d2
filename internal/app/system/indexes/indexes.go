// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. It reconciles every collection's indexes
and is safe to run repeatedly. Problems are collected rather than returned
on first failure so one run shows everything that is wrong.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, c := range []struct {
		coll string
		want []mongo.IndexModel
	}{
		{"users", userIndexes()},
		{"groups", groupIndexes()},
		{"diary_entries", diaryEntryIndexes()},
		{"audit_events", auditEventIndexes()},
	} {
		if err := reconcile(ctx, db.Collection(c.coll), c.want); err != nil {
			problems = append(problems, c.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// invitations resolve addresses to users
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_users_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_fullnameci__id"),
		},
	}
}

func groupIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// ListMyGroups, sorted by name
			Keys:    bson.D{{Key: "members", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_members_nameci__id"),
		},
		{
			// ListInvitationsFor
			Keys:    bson.D{{Key: "invitations", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_invitations_nameci__id"),
		},
		{
			Keys:    bson.D{{Key: "leader", Value: 1}},
			Options: options.Index().SetName("idx_groups_leader"),
		},
	}
}

func diaryEntryIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// cascade delete and per-group listing
			Keys:    bson.D{{Key: "group", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_diary_entries_group_createdat"),
		},
	}
}

func auditEventIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_events_group_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_events_actor_timestamp"),
		},
	}
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// reconcile makes coll carry every index in want. An index with the same
// keys is reused when its uniqueness matches, renamed when only the name
// differs, and dropped and recreated otherwise.
func reconcile(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// a collection that does not exist yet has no indexes to list
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range want {
		name := *m.Options.Name
		unique := isUnique(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		ex, found := existing[sig]
		switch {
		case found && isUnique(ex.Unique) == unique && ex.Name == name:
			log.Debug("reusing existing index")
			continue
		case found:
			log.Info("replacing index", zap.String("existing_name", ex.Name))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s: %v", name, ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && wafflemongo.IsDup(err) {
				err = fmt.Errorf("duplicates present on %s", sig)
			}
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
