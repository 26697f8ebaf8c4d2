package registry

import (
	"context"

	"github.com/dalemusser/sharediary/internal/app/policy/grouppolicy"
	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/dalemusser/sharediary/internal/app/system/normalize"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite adds the users behind emails to the group's pending invitations.
// Emails with no matching user are skipped, as are users who are already
// members or already invited. It returns how many invitations were added.
func (r *Registry) Invite(ctx context.Context, actor, groupID primitive.ObjectID, emails []string) (added int, err error) {
	defer func() { r.observe("invite", err) }()

	emails = normalize.Emails(emails)
	var ids []primitive.ObjectID
	if len(emails) > 0 {
		users, err := r.users.FindByEmails(ctx, emails)
		if err != nil {
			return 0, apperr.Wrap(err, apperr.Internal, "find users")
		}
		for _, u := range users {
			ids = append(ids, u.ID)
		}
	}

	_, err = r.mutate(ctx, groupID, func(g models.Group) (models.Group, bool, error) {
		if err := grouppolicy.CanInvite(g, actor, r.invitePolicy); err != nil {
			return g, false, err
		}
		before := len(g.Invitations)
		next, changed := addInvitations(g, ids)
		added = len(next.Invitations) - before
		return next, changed, nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// ListInvitationsFor returns the groups that have invited userID. The
// inviter is reported as the group leader.
func (r *Registry) ListInvitationsFor(ctx context.Context, userID primitive.ObjectID) (out []Invitation, err error) {
	defer func() { r.observe("list_invitations", err) }()

	groups, err := r.groups.ListByInvitee(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list invitations")
	}
	out = make([]Invitation, 0, len(groups))
	if len(groups) == 0 {
		return out, nil
	}

	leaders := make([]primitive.ObjectID, 0, len(groups))
	for _, g := range groups {
		leaders = append(leaders, g.Leader)
	}
	people, err := r.users.Resolve(ctx, leaders)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "resolve leaders")
	}

	for _, g := range groups {
		out = append(out, Invitation{
			GroupID:     g.ID,
			GroupName:   g.Name,
			InviterName: people[g.Leader].FullName,
		})
	}
	return out, nil
}

// AcceptInvite puts actor on the roster and clears any invitation. A user
// without an invitation is added as well; callers that need an invite
// check gate on ListInvitationsFor.
func (r *Registry) AcceptInvite(ctx context.Context, actor, groupID primitive.ObjectID) (err error) {
	defer func() { r.observe("accept_invite", err) }()

	_, err = r.mutate(ctx, groupID, func(g models.Group) (models.Group, bool, error) {
		next, changed := acceptInvitation(g, actor)
		return next, changed, nil
	})
	return err
}

// RejectInvite clears actor's invitation. Rejecting twice is harmless.
func (r *Registry) RejectInvite(ctx context.Context, actor, groupID primitive.ObjectID) (err error) {
	defer func() { r.observe("reject_invite", err) }()

	_, err = r.mutate(ctx, groupID, func(g models.Group) (models.Group, bool, error) {
		next, changed := dropInvitation(g, actor)
		return next, changed, nil
	})
	return err
}
