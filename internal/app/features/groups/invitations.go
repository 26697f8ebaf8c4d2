package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/sharediary/internal/app/features/errors"
	"github.com/dalemusser/sharediary/internal/app/system/timeouts"
)

type inviteRequest struct {
	UserEmails []string `json:"userEmails"`
}

// HandleInvite handles POST /groups/{id}/invite.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "invite", err)
		return
	}
	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, "invite", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "invite")
	defer cancel()

	n, err := h.Svc.Invite(ctx, uid, gid, req.UserEmails)
	if err != nil {
		h.ErrLog.Write(w, r, "invite", err)
		return
	}
	h.AuditLog.MembersInvited(r.Context(), r, gid, uid, len(req.UserEmails), n)
	uierrors.WriteJSON(w, http.StatusOK, map[string]int{"invited": n})
}

// ServeInvitations handles GET /groups/invitations.
func (h *Handler) ServeInvitations(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "list invitations")
	defer cancel()

	invs, err := h.Svc.ListInvitationsFor(ctx, uid)
	if err != nil {
		h.ErrLog.Write(w, r, "list_invitations", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"invitations": invs})
}

// HandleAccept handles POST /groups/{id}/accept.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.selfTransition(w, r, "accept_invite", h.Svc.AcceptInvite, h.AuditLog.InviteAccepted)
}

// HandleReject handles POST /groups/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.selfTransition(w, r, "reject_invite", h.Svc.RejectInvite, h.AuditLog.InviteRejected)
}

// HandleLeave handles POST /groups/{id}/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.selfTransition(w, r, "leave_group", h.Svc.LeaveGroup, h.AuditLog.MemberLeft)
}
