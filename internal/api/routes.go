package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/email-subscribers/internal/pkg/httputil"
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, health *HealthChecker, origins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(origins) == 0 {
		origins = defaultOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if health != nil {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/live", health.HandleLiveness)
		r.Get("/health/ready", health.HandleReadiness)
	} else {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			httputil.OK(w, map[string]string{"status": "healthy"})
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/triggers/{trigger}", h.HandleTrigger)
		r.Get("/data-types", h.HandleDataTypes)

		r.Get("/lists", h.HandleLists)
		r.Get("/lists/options", h.HandleListOptions)
		r.Get("/contacts", h.HandleGetContact)

		r.Get("/workflows", h.HandleListWorkflows)
		r.Post("/workflows", h.HandleCreateWorkflow)
		r.Put("/workflows/{id}/status", h.HandleUpdateWorkflowStatus)
		r.Get("/workflows/actions", h.HandleActionNames)

		r.Post("/activity", h.HandleRecordActivity)
		r.Get("/reports/summary", h.HandleSummary)
	})

	return r
}
