package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/sharediary/internal/app/features/errors"
	"github.com/dalemusser/sharediary/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// selfTransition runs a mutation where the actor acts on their own
// membership in the group named by {id}. Success is 204.
func (h *Handler) selfTransition(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, actor, groupID primitive.ObjectID) error,
	record func(ctx context.Context, r *http.Request, groupID, actor primitive.ObjectID)) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, op, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, op)
	defer cancel()

	if err := fn(ctx, uid, gid); err != nil {
		h.ErrLog.Write(w, r, op, err)
		return
	}
	record(r.Context(), r, gid, uid)
	w.WriteHeader(http.StatusNoContent)
}

// ServeMembers handles GET /groups/{id}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	gid, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "list_members", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "list members")
	defer cancel()

	members, err := h.Svc.ListMembers(ctx, gid)
	if err != nil {
		h.ErrLog.Write(w, r, "list_members", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"members": members})
}

// HandleRemoveMember handles DELETE /groups/{id}/members/{memberId}.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "remove_member", err)
		return
	}
	target, err := pathID(r, "memberId")
	if err != nil {
		h.ErrLog.Write(w, r, "remove_member", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "remove member")
	defer cancel()

	if err := h.Svc.RemoveMember(ctx, uid, gid, target); err != nil {
		h.ErrLog.Write(w, r, "remove_member", err)
		return
	}
	h.AuditLog.MemberRemoved(r.Context(), r, gid, uid, target)
	w.WriteHeader(http.StatusNoContent)
}
