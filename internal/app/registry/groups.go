package registry

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/dalemusser/sharediary/internal/app/policy/grouppolicy"
	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/dalemusser/sharediary/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sharediary/internal/app/system/normalize"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxGroupNameLen = 200

// CreateGroup makes actor the leader and only member of a new group.
// An empty password leaves the group open.
func (r *Registry) CreateGroup(ctx context.Context, actor primitive.ObjectID, name, password string) (id primitive.ObjectID, err error) {
	defer func() { r.observe("create_group", err) }()

	name = normalize.Name(htmlsanitize.PlainText(name))
	if name == "" {
		return primitive.NilObjectID, apperr.New(apperr.InvalidArgument, "group name is required")
	}
	if utf8.RuneCountInString(name) > maxGroupNameLen {
		return primitive.NilObjectID, apperr.New(apperr.InvalidArgument, "group name is too long")
	}

	g := models.Group{
		Name:        name,
		Leader:      actor,
		Members:     []primitive.ObjectID{actor},
		Invitations: []primitive.ObjectID{},
	}
	if password != "" {
		h, err := r.hashPassword(password)
		if err != nil {
			return primitive.NilObjectID, err
		}
		g.Password = &h
	}

	created, err := r.groups.Create(ctx, g)
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(err, apperr.Internal, "create group")
	}
	return created.ID, nil
}

// ListMyGroups returns every group actor belongs to, with the leader and
// members resolved to people. Members whose user record is gone are left
// out of the list.
func (r *Registry) ListMyGroups(ctx context.Context, actor primitive.ObjectID) (out []GroupView, err error) {
	defer func() { r.observe("list_my_groups", err) }()

	groups, err := r.groups.ListByMember(ctx, actor)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list groups")
	}
	if len(groups) == 0 {
		return []GroupView{}, nil
	}

	var ids []primitive.ObjectID
	for _, g := range groups {
		ids = append(ids, g.Leader)
		ids = append(ids, g.Members...)
	}
	people, err := r.users.Resolve(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "resolve members")
	}

	out = make([]GroupView, 0, len(groups))
	for _, g := range groups {
		v := GroupView{
			ID:          g.ID,
			Name:        g.Name,
			Leader:      Person{ID: g.Leader},
			Members:     resolveAll(g.Members, people),
			HasPassword: g.HasPassword(),
			CreatedAt:   g.CreatedAt,
		}
		if u, ok := people[g.Leader]; ok {
			v.Leader = toPerson(u)
		}
		out = append(out, v)
	}
	return out, nil
}

// ListMembers returns the resolved members of a group in roster order.
func (r *Registry) ListMembers(ctx context.Context, groupID primitive.ObjectID) (out []Person, err error) {
	defer func() { r.observe("list_members", err) }()

	g, err := r.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	people, err := r.users.Resolve(ctx, g.Members)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "resolve members")
	}
	return resolveAll(g.Members, people), nil
}

// DeleteGroup removes a group and every diary entry it owns. Only the
// leader may do this. It returns the number of entries deleted.
func (r *Registry) DeleteGroup(ctx context.Context, actor, groupID primitive.ObjectID) (entries int64, err error) {
	defer func() { r.observe("delete_group", err) }()

	g, err := r.load(ctx, groupID)
	if err != nil {
		return 0, err
	}
	if err := grouppolicy.CanDeleteGroup(g, actor); err != nil {
		return 0, err
	}

	err = r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := r.diaries.DeleteByGroup(ctx, groupID)
		if err != nil {
			return apperr.Wrap(err, apperr.Internal, "delete diary entries")
		}
		gone, err := r.groups.Delete(ctx, groupID)
		if err != nil {
			return apperr.Wrap(err, apperr.Internal, "delete group")
		}
		if gone == 0 {
			return errGroupNotFound
		}
		entries = n
		return nil
	})
	if err != nil {
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			err = apperr.Wrap(err, apperr.Internal, "delete group")
		}
		return 0, err
	}

	r.log.Info("group deleted",
		zap.String("group_id", groupID.Hex()),
		zap.String("actor_id", actor.Hex()),
		zap.Int64("diary_entries", entries))
	return entries, nil
}

func resolveAll(ids []primitive.ObjectID, people map[primitive.ObjectID]models.User) []Person {
	out := make([]Person, 0, len(ids))
	for _, id := range ids {
		if u, ok := people[id]; ok {
			out = append(out, toPerson(u))
		}
	}
	return out
}
