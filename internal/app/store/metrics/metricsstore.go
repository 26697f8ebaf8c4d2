package metricsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts are the collection totals exported as gauges on /metrics.
type Counts struct {
	Groups             int64
	Users              int64
	DiaryEntries       int64
	PendingInvitations int64
}

// FetchCounts returns the current totals.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	if n, err := db.Collection("groups").CountDocuments(ctx, bson.M{}); err == nil {
		out.Groups = n
	}
	if n, err := db.Collection("users").CountDocuments(ctx, bson.M{}); err == nil {
		out.Users = n
	}
	if n, err := db.Collection("diary_entries").CountDocuments(ctx, bson.M{}); err == nil {
		out.DiaryEntries = n
	}

	// invitations are embedded, so sum the array sizes
	cur, err := db.Collection("groups").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$size": bson.M{"$ifNull": bson.A{"$invitations", bson.A{}}}}},
		}}},
	})
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err == nil && len(rows) > 0 {
		out.PendingInvitations = rows[0].Total
	}

	return out
}
