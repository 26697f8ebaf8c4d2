package registry

import (
	"context"
	"errors"

	"github.com/dalemusser/sharediary/internal/app/policy/grouppolicy"
	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/dalemusser/sharediary/internal/app/system/passhash"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errWrongPassword   = apperr.New(apperr.Forbidden, "incorrect group password")
	errPasswordTooLong = apperr.New(apperr.InvalidArgument, "group password must be at most 72 bytes")
)

// hashPassword rejects passwords the hasher cannot take before hashing.
func (r *Registry) hashPassword(plain string) (string, error) {
	if len(plain) > passhash.MaxBytes {
		return "", errPasswordTooLong
	}
	h, err := r.hasher.Hash(plain)
	if errors.Is(err, passhash.ErrTooLong) {
		return "", errPasswordTooLong
	}
	if err != nil {
		return "", apperr.Wrap(err, apperr.Internal, "hash password")
	}
	return h, nil
}

// VerifyPassword checks candidate against the group's password. A group
// without a password accepts anything.
func (r *Registry) VerifyPassword(ctx context.Context, groupID primitive.ObjectID, candidate string) (err error) {
	defer func() { r.observe("verify_password", err) }()

	g, err := r.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.HasPassword() {
		return nil
	}
	ok, err := r.hasher.Verify(candidate, *g.Password)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "verify password")
	}
	if !ok {
		return errWrongPassword
	}
	return nil
}

// UpdatePassword replaces the group's password hash. Leader only.
func (r *Registry) UpdatePassword(ctx context.Context, actor, groupID primitive.ObjectID, newPassword string) (err error) {
	defer func() { r.observe("update_password", err) }()

	g, err := r.load(ctx, groupID)
	if err != nil {
		return err
	}
	if err := grouppolicy.CanUpdatePassword(g, actor); err != nil {
		return err
	}
	if newPassword == "" {
		return apperr.New(apperr.InvalidArgument, "new password is required")
	}

	// Hash once; the transition below may run more than once.
	h, err := r.hashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = r.mutate(ctx, groupID, func(g models.Group) (models.Group, bool, error) {
		if err := grouppolicy.CanUpdatePassword(g, actor); err != nil {
			return g, false, err
		}
		next, changed := setPassword(g, h)
		return next, changed, nil
	})
	return err
}
