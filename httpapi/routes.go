package httpapi

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Status)
			r.Delete("/", h.Abandon)
			r.Post("/turns", h.SubmitUserTurn)
			r.Post("/approve", h.Approve)
			r.Post("/reject", h.Reject)
			r.Post("/resume", h.Resume)
			r.Get("/record", h.CurrentRecord)
		})
	})
}
