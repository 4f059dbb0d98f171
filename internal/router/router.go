package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stegportal/portal/internal/handler"
	mw "github.com/stegportal/portal/internal/middleware"
	"github.com/stegportal/portal/internal/middleware/metrics"
	"github.com/stegportal/portal/internal/setup"
)

func SetupRouter(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	h := deps.Handler

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeaders(deps.Public.SecureCookies, mw.DefaultCSP))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.HealthzHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.Public.StaticPath))))

	// Paths the navigation shell has always linked to.
	r.Get("/SignIn", redirect("/signin"))
	r.Get("/SignUp", redirect("/signup"))
	r.Get("/About", redirect("/about"))

	r.Group(func(r chi.Router) {
		r.Use(mw.Visitor(mw.CookieConfig{SecureCookies: deps.Public.SecureCookies}))
		r.Use(mw.ValidateCSRF())

		r.Get("/", h.HomeGetHandler)
		r.Get("/about", h.AboutGetHandler)
		r.Get("/signin", h.SigninGetHandler)
		r.Get("/signup", h.SignupGetHandler)
		r.Get("/signout", h.SignoutHandler)
		r.Post("/signup/unit", h.SignupUnitHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(deps.FormLimiter, mw.GetIP))
			r.Post("/signin", h.SigninPostHandler)
			r.Post("/signup", h.SignupPostHandler)
		})
	})

	return r
}

func redirect(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	}
}
