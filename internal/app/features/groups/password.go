package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/sharediary/internal/app/features/errors"
	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/dalemusser/sharediary/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type verifyRequest struct {
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// HandleVerifyPassword handles POST /groups/{id}/verify-password.
func (h *Handler) HandleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	gid, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "verify_password", err)
		return
	}
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, "verify_password", err)
		return
	}

	if h.Limiter != nil && !h.Limiter.Check(r, gid.Hex()) {
		h.Log.Warn("group password attempts throttled", zap.String("group_id", gid.Hex()))
		uierrors.Status(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "verify password")
	defer cancel()

	if err := h.Svc.VerifyPassword(ctx, gid, req.Password); err != nil {
		if apperr.Is(err, apperr.Forbidden) {
			h.AuditLog.PasswordCheckFailed(r.Context(), r, gid, "incorrect group password")
		}
		h.ErrLog.Write(w, r, "verify_password", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(r, gid.Hex())
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleUpdatePassword handles PUT /groups/{id}/password.
func (h *Handler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "update_password", err)
		return
	}
	var req updatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, "update_password", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "update password")
	defer cancel()

	if err := h.Svc.UpdatePassword(ctx, uid, gid, req.NewPassword); err != nil {
		h.ErrLog.Write(w, r, "update_password", err)
		return
	}
	h.AuditLog.PasswordChanged(r.Context(), r, gid, uid)
	w.WriteHeader(http.StatusNoContent)
}
