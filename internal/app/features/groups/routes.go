// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/sharediary/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreateGroup)
		pr.Get("/mine", h.ServeMyGroups)
		pr.Get("/invitations", h.ServeInvitations)

		pr.Route("/{id}", func(gr chi.Router) {
			gr.Delete("/", h.HandleDeleteGroup)

			// invitations
			gr.Post("/invite", h.HandleInvite)
			gr.Post("/accept", h.HandleAccept)
			gr.Post("/reject", h.HandleReject)

			// membership
			gr.Get("/members", h.ServeMembers)
			gr.Delete("/members/{memberId}", h.HandleRemoveMember)
			gr.Post("/leave", h.HandleLeave)

			// password gate
			gr.Post("/verify-password", h.HandleVerifyPassword)
			gr.Put("/password", h.HandleUpdatePassword)
		})
	})

	return r
}
