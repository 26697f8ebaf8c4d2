package registry

import (
	"slices"

	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The functions in this file are pure: they take a snapshot the caller
// owns and return the next one. None of them can break
// members ∩ invitations = ∅.

// addInvitations appends every id that is neither a member nor already
// invited.
func addInvitations(g models.Group, ids []primitive.ObjectID) (models.Group, bool) {
	changed := false
	for _, id := range ids {
		if slices.Contains(g.Members, id) || slices.Contains(g.Invitations, id) {
			continue
		}
		g.Invitations = append(g.Invitations, id)
		changed = true
	}
	return g, changed
}

// acceptInvitation moves userID into members. The invitation is dropped
// whether or not it existed.
func acceptInvitation(g models.Group, userID primitive.ObjectID) (models.Group, bool) {
	g, changed := dropInvitation(g, userID)
	if !slices.Contains(g.Members, userID) {
		g.Members = append(g.Members, userID)
		changed = true
	}
	return g, changed
}

func dropInvitation(g models.Group, userID primitive.ObjectID) (models.Group, bool) {
	var changed bool
	g.Invitations, changed = without(g.Invitations, userID)
	return g, changed
}

func dropMember(g models.Group, userID primitive.ObjectID) (models.Group, bool) {
	var changed bool
	g.Members, changed = without(g.Members, userID)
	return g, changed
}

func setPassword(g models.Group, hash string) (models.Group, bool) {
	if g.Password != nil && *g.Password == hash {
		return g, false
	}
	g.Password = &hash
	return g, true
}

// without returns a copy of ids with id removed. ids is never written to.
func without(ids []primitive.ObjectID, id primitive.ObjectID) ([]primitive.ObjectID, bool) {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids, false
	}
	return slices.Delete(slices.Clone(ids), i, i+1), true
}
