package registry

import (
	"context"

	"github.com/dalemusser/sharediary/internal/app/policy/grouppolicy"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RemoveMember takes target off the roster. Only the leader may remove,
// and never themself.
func (r *Registry) RemoveMember(ctx context.Context, actor, groupID, target primitive.ObjectID) (err error) {
	defer func() { r.observe("remove_member", err) }()

	_, err = r.mutate(ctx, groupID, func(g models.Group) (models.Group, bool, error) {
		if err := grouppolicy.CanRemoveMember(g, actor, target); err != nil {
			return g, false, err
		}
		next, changed := dropMember(g, target)
		return next, changed, nil
	})
	return err
}

// LeaveGroup takes actor off the roster. The leader cannot leave.
func (r *Registry) LeaveGroup(ctx context.Context, actor, groupID primitive.ObjectID) (err error) {
	defer func() { r.observe("leave_group", err) }()

	_, err = r.mutate(ctx, groupID, func(g models.Group) (models.Group, bool, error) {
		if err := grouppolicy.CanLeave(g, actor); err != nil {
			return g, false, err
		}
		next, changed := dropMember(g, actor)
		return next, changed, nil
	})
	return err
}
