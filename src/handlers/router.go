package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/triggerNode/BuxTax/src/metrics"
	"github.com/triggerNode/BuxTax/src/security"
	"github.com/triggerNode/BuxTax/src/services"
	"github.com/triggerNode/BuxTax/src/utils"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	AuthService        *security.AuthService
	EntitlementService services.EntitlementService
	Calculator         *CalculatorHandler
	Uploads            *UploadHandler
	Entitlements       *EntitlementHandler
	Limiter            *rate.Limiter
	AllowedOrigins     []string
	RequestTimeout     time.Duration
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(RateLimitMiddleware(cfg.Limiter))
		}

		r.Get("/rates", cfg.Calculator.HandleGetRates)
		r.Post("/calculate", cfg.Calculator.HandleCalculate)
		r.Post("/convert", cfg.Calculator.HandleConvert)
		r.Post("/webhooks/stripe", cfg.Entitlements.HandleStripeWebhook)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.AuthService))

			r.Get("/entitlement", cfg.Entitlements.HandleGetEntitlement)
			r.Post("/uploads/preview", cfg.Uploads.HandlePreview)

			r.Group(func(r chi.Router) {
				r.Use(EntitlementMiddleware(cfg.EntitlementService))

				r.Post("/goal", cfg.Calculator.HandleGoal)
				r.Post("/sensitivity", cfg.Calculator.HandleSensitivity)

				r.Post("/uploads", cfg.Uploads.HandleUpload)
				r.Get("/payouts", cfg.Uploads.HandleGetPayouts)
				r.Get("/payouts/export", cfg.Uploads.HandleExport)
				r.Get("/payouts/pulse", cfg.Uploads.HandlePulse)
				r.Get("/payouts/goal", cfg.Uploads.HandleGoalProgress)
				r.Delete("/payouts", cfg.Uploads.HandleDeletePayouts)
			})
		})
	})

	return r
}
