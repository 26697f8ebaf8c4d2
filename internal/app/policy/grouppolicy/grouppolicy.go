// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsLeader reports whether userID leads the group.
func IsLeader(g models.Group, userID primitive.ObjectID) bool {
	return g.Leader == userID
}

// IsMember reports whether userID is on the group's active roster.
func IsMember(g models.Group, userID primitive.ObjectID) bool {
	return slices.Contains(g.Members, userID)
}

// IsInvited reports whether userID has a pending invitation.
func IsInvited(g models.Group, userID primitive.ObjectID) bool {
	return slices.Contains(g.Invitations, userID)
}

// IsSelf reports whether the actor is targeting their own id.
func IsSelf(actorID, targetID primitive.ObjectID) bool {
	return actorID == targetID
}

// InvitePolicy decides who may issue invitations.
type InvitePolicy string

const (
	// InviteOpen lets any caller that knows the group id invite.
	InviteOpen InvitePolicy = "open"
	// InviteMembers restricts invitations to the leader and members.
	InviteMembers InvitePolicy = "members"
)

// ParseInvitePolicy normalizes a configured policy name. Empty means open.
func ParseInvitePolicy(s string) (InvitePolicy, error) {
	switch p := InvitePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", InviteOpen:
		return InviteOpen, nil
	case InviteMembers:
		return InviteMembers, nil
	default:
		return "", fmt.Errorf("invite policy must be %q or %q, got %q", InviteOpen, InviteMembers, s)
	}
}

var (
	errNotLeader   = apperr.New(apperr.Forbidden, "only the group leader can do that")
	errNotMember   = apperr.New(apperr.Forbidden, "you are not a member of this group")
	errRemoveSelf  = apperr.New(apperr.InvalidArgument, "you cannot remove yourself from the group")
	errLeaderLeave = apperr.New(apperr.Forbidden, "the group leader cannot leave the group")
)

// CanInvite checks the configured invite policy. The leader is always a
// member, so InviteMembers also admits the leader.
func CanInvite(g models.Group, actorID primitive.ObjectID, p InvitePolicy) error {
	if p == InviteMembers && !IsMember(g, actorID) {
		return errNotMember
	}
	return nil
}

// CanRemoveMember requires the actor to lead the group and to target
// someone other than themself. The leader check comes first, so a
// non-leader is refused with Forbidden whatever the target.
func CanRemoveMember(g models.Group, actorID, targetID primitive.ObjectID) error {
	if !IsLeader(g, actorID) {
		return errNotLeader
	}
	if IsSelf(actorID, targetID) {
		return errRemoveSelf
	}
	return nil
}

// CanUpdatePassword is leader-only.
func CanUpdatePassword(g models.Group, actorID primitive.ObjectID) error {
	if !IsLeader(g, actorID) {
		return errNotLeader
	}
	return nil
}

// CanDeleteGroup is leader-only.
func CanDeleteGroup(g models.Group, actorID primitive.ObjectID) error {
	if !IsLeader(g, actorID) {
		return errNotLeader
	}
	return nil
}

// CanLeave admits any member except the leader.
func CanLeave(g models.Group, actorID primitive.ObjectID) error {
	if IsLeader(g, actorID) {
		return errLeaderLeave
	}
	if !IsMember(g, actorID) {
		return errNotMember
	}
	return nil
}
