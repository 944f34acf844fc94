package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sirivellaramudu/code-collab-server/internal/api"
	"github.com/sirivellaramudu/code-collab-server/internal/config"
)

// New assembles the HTTP surface: health probes, the REST endpoints and
// the collaboration websocket.
func New(cfg config.Config, h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// The websocket must not inherit a request timeout, so only the
		// REST routes get one.
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/healthz", h.Health)
		r.Get("/languages", h.ListLanguages)
		r.Get("/rooms/{id}", h.GetRoomStatus)
		r.Post("/execute", h.ExecuteCode)
	})

	r.Get("/ws", h.CollabWS)

	return r
}
