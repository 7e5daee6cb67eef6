package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const compressionLevel = 5

// NewRouter creates a chi router with all endpoints and middleware
func NewRouter(a Assessor, maxBodySize int64, requestTimeout time.Duration) http.Handler {
	h := &Handler{assessor: a, maxBodySize: maxBodySize}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(compressionLevel))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Heartbeat("/ping"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/assess", h.handleAssess)
	})

	return r
}
