package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/sitebooks/sitebooks-backend/internal/config"
	"github.com/sitebooks/sitebooks-backend/internal/handler/http/middleware"
	"github.com/sitebooks/sitebooks-backend/internal/handler/http/response"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/jwt"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/metrics"
	"github.com/unrolled/secure"
)

func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Metrics,
	JWTService jwt.Service,
	siteProfitHandler SiteProfitHandler,
	dashboardHandler DashboardHandler,
) *chi.Mux {
	r := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      cfg.App.Env != "production",
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(secureMiddleware.Handler)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))
	r.Use(m.Middleware)

	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(cfg.App.RequestTimeout))

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(rateLimiter(cfg.HTTP.RateLimitPerMinute))

			r.Route("/site-profit", func(r chi.Router) {
				r.Get("/", siteProfitHandler.List)
				r.Get("/export", siteProfitHandler.Export)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", dashboardHandler.GetSummary)
			})
		})
	})
	return r
}

// rateLimiter limits each user, or each IP when the token has no user_id.
func rateLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.TooManyRequests(w, "Too many requests, slow down")
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			return "user:" + userID, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
