package admin

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers status, metrics, scenario and summary cache routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/status/thinking/{id}", h.ThinkingStatus)

	r.Route("/metrics/model-calls", func(r chi.Router) {
		r.Get("/", h.ModelCallMetrics)
		r.Post("/reset", h.ResetMetrics)
	})

	r.Route("/scenarios", func(r chi.Router) {
		r.Get("/", h.ListScenarios)
		r.Post("/", h.SaveScenario)
		r.Get("/match", h.MatchScenario)
		r.Post("/reload", h.ReloadScenarios)
		r.Get("/{id}", h.GetScenario)
		r.Delete("/{id}", h.DeleteScenario)
	})

	r.Route("/summaries", func(r chi.Router) {
		r.Get("/", h.SummaryInfo)
		r.Post("/clear", h.ClearSummaries)
	})
}
