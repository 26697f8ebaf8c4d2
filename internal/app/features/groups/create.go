package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/sharediary/internal/app/features/errors"
	"github.com/dalemusser/sharediary/internal/app/system/timeouts"
)

type createRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleCreateGroup handles POST /groups.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, "create_group", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "create group")
	defer cancel()

	id, err := h.Svc.CreateGroup(ctx, uid, req.Name, req.Password)
	if err != nil {
		h.ErrLog.Write(w, r, "create_group", err)
		return
	}
	h.AuditLog.GroupCreated(r.Context(), r, id, uid, req.Password != "")
	uierrors.WriteJSON(w, http.StatusCreated, map[string]string{"groupId": id.Hex()})
}

// ServeMyGroups handles GET /groups/mine.
func (h *Handler) ServeMyGroups(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "list my groups")
	defer cancel()

	groups, err := h.Svc.ListMyGroups(ctx, uid)
	if err != nil {
		h.ErrLog.Write(w, r, "list_my_groups", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// HandleDeleteGroup handles DELETE /groups/{id}.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "delete_group", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Cascade(), h.Log, "delete group")
	defer cancel()

	n, err := h.Svc.DeleteGroup(ctx, uid, gid)
	if err != nil {
		h.ErrLog.Write(w, r, "delete_group", err)
		return
	}
	h.AuditLog.GroupDeleted(r.Context(), r, gid, uid, n)
	uierrors.WriteJSON(w, http.StatusOK, map[string]int64{"deletedEntries": n})
}
