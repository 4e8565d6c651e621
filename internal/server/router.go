package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/luciferfruits/storefront/pkg/httpx"
)

// AdminHeader carries the admin panel password.
const AdminHeader = "X-Admin-Password"

type PublicRoutes interface {
	Register(r chi.Router)
}

type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

type Options struct {
	AdminPassword string
	CORSOrigins   []string
	Public        []PublicRoutes
	Admin         []AdminRoutes
	// Ready reports whether state has been loaded.
	Ready func() bool
}

func NewRouter(log *slog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", AdminHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil && !opts.Ready() {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, h := range opts.Public {
		h.Register(r)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminOnly(log, opts.AdminPassword))
		for _, h := range opts.Admin {
			h.RegisterAdmin(r)
		}
	})
	return r
}

// AdminOnly rejects requests whose admin header does not match password.
func AdminOnly(log *slog.Logger, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(password)) != 1 {
				log.Warn("admin access denied", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				httpx.WriteError(w, http.StatusUnauthorized, "Incorrect password!")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
