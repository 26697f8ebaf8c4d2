// internal/domain/models/diaryentry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiaryEntry is a journal entry written into a group. Entries are owned by
// their group and are removed when the group is deleted.
type DiaryEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID `bson:"group" json:"group"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`
	Body      string             `bson:"body" json:"body"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
