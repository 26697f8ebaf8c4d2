// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a shared diary circle owned by a single leader.
//
// NOTE:
//   - Members and pending invitations are embedded on the group document;
//     a user id is never in both lists at once.
//   - The leader is always in Members.
//   - Password holds a bcrypt hash or is nil for an open group.
//   - Version is the optimistic-concurrency token; every Save bumps it.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Leader      primitive.ObjectID   `bson:"leader" json:"leader"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Invitations []primitive.ObjectID `bson:"invitations" json:"invitations"`
	Password    *string              `bson:"password" json:"-"`
	Version     int64                `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasPassword reports whether the group is gated by a password.
func (g Group) HasPassword() bool {
	return g.Password != nil && *g.Password != ""
}

// Clone returns a copy that shares no slices or pointers with g.
func (g Group) Clone() Group {
	out := g
	out.Members = append([]primitive.ObjectID(nil), g.Members...)
	out.Invitations = append([]primitive.ObjectID(nil), g.Invitations...)
	if g.Password != nil {
		p := *g.Password
		out.Password = &p
	}
	return out
}
