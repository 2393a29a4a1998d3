package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/", h.ListSessions)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Put("/", h.UpdateSession)
			r.Delete("/", h.DeleteSession)

			r.Post("/answers", h.SubmitAnswer)
			r.Post("/next-question", h.NextQuestion)
			r.Post("/undo-answer", h.UndoAnswer)
			r.Post("/skip-follow-up", h.SkipFollowUp)
			r.Post("/complete-dimension", h.CompleteDimension)
			r.Post("/restart-interview", h.RestartInterview)

			r.Post("/documents", h.UploadDocument)
			r.Delete("/documents/{name}", h.DeleteDocument)
		})
	})
}
