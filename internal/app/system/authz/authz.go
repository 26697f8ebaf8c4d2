// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/sharediary/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. This ensures callers can trust that ok=true means
// a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// ActorID is UserCtx without the name.
func ActorID(r *http.Request) (primitive.ObjectID, bool) {
	_, id, ok := UserCtx(r)
	return id, ok
}
