package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, h.withMetrics)
	router.Use(middleware.Compress(5, "application/json"))

	router.Get("/api/version", h.getServerVersion)
	router.Method("GET", "/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/params", h.params)
		r.Post("/api/auth/login", h.login)

		r.With(h.limitShareResolve).Get("/api/shares/{shareID}", h.openShare)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Put("/api/auth/credentials", h.updateCredentials)
		r.Get("/api/users/{login}", h.findMember)

		r.Post("/api/shares", h.createShare)

		r.Route("/api/vaults", func(r chi.Router) {
			r.Post("/", h.createVault)
			r.Get("/", h.listVaults)

			r.Route("/{vaultID}", func(r chi.Router) {
				r.Get("/key", h.getWrappedKey)
				r.Get("/members", h.listMembers)
				r.Post("/members", h.grantAccess)
				r.Post("/rotate", h.rotate)

				r.Get("/secrets", h.listSecrets)
				r.Put("/secrets", h.putSecret)
				r.Get("/secrets/{environment}/{key}", h.getSecret)
				r.Delete("/secrets/{environment}/{key}", h.deleteSecret)
			})
		})
	})

	router.MethodNotAllowed(hideMethodNotAllowed)

	return router
}
