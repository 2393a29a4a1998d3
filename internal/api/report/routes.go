package report

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers report generation and export routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/sessions/{id}/generate-report", h.GenerateReport)
	r.Get("/sessions/{id}/reports", h.ListReports)
	r.Get("/reports/{report_id}", h.GetReport)
	r.Get("/status/report-generation/{id}", h.ReportStatus)
}
