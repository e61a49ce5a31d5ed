package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/payreminder/internal/http/middleware"
	"github.com/MrJamesThe3rd/payreminder/internal/http/reminder"
)

type Options struct {
	JWTSecret          string
	AllowedOrigins     []string
	Timeout            time.Duration
	BatchRatePerMinute int
}

func New(opts Options, remindersV1 *reminder.Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TenantHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(chimiddleware.Timeout(opts.Timeout))
	}

	router.Get("/health", health)

	batchLimiter := middleware.PerMinute(opts.BatchRatePerMinute)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Tenant([]byte(opts.JWTSecret)))

		r.Route("/reminders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(batchLimiter.Limit)
				remindersV1.BatchRoutes(r)
			})

			remindersV1.Routes(r)
		})
	})

	return router
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
