package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/crimewatch-io/crimewatch/internal/auth"
	"github.com/crimewatch-io/crimewatch/internal/config"
	"github.com/crimewatch-io/crimewatch/internal/crime"
	"github.com/crimewatch-io/crimewatch/internal/person"
	"github.com/crimewatch-io/crimewatch/internal/storage"
)

type Api struct {
	Config  *config.Config
	Router  *chi.Mux
	auth    *auth.Service
	tokens  *auth.TokenManager
	persons *person.Service
	crimes  *crime.Service
	uploads storage.Uploader
}

// NewApi wires the HTTP surface. uploads may be nil when no object storage is
// configured; the upload route then answers 503.
func NewApi(cfg *config.Config, authSvc *auth.Service, tokens *auth.TokenManager, persons *person.Service, crimes *crime.Service, uploads storage.Uploader) *Api {
	api := &Api{
		Config:  cfg,
		Router:  chi.NewRouter(),
		auth:    authSvc,
		tokens:  tokens,
		persons: persons,
		crimes:  crimes,
		uploads: uploads,
	}
	api.setupRoutes()
	return api
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/heartbeat"))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", api.RegisterHandler)
		r.Post("/login", api.LoginHandler)
		r.Post("/refresh", api.RefreshHandler)
		r.Post("/logout", api.LogoutHandler)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(api.tokens))
			r.Post("/logout-all", api.LogoutAllHandler)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", api.AdminLoginHandler)
			r.Post("/verify-otp", api.VerifyOTPHandler)
			r.Post("/refresh", api.AdminRefreshHandler)
		})
	})

	r.Route("/persons", func(r chi.Router) {
		r.Get("/feed", api.PersonFeedHandler)
		r.Get("/id/{id}", api.PersonByIDHandler)
		r.Get("/{slug}", api.PersonProfileHandler)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(api.tokens), RequireAdmin)
			r.Delete("/{id}", api.DeletePersonHandler)
		})
	})

	r.Route("/crimes", func(r chi.Router) {
		r.Get("/person/{slug}", api.CrimesByPersonHandler)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(api.tokens))
			r.Post("/", api.CreateCrimeHandler)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(api.tokens), RequireAdmin)
			r.Get("/all", api.ListCrimesHandler)
			r.Get("/{id}", api.GetCrimeHandler)
			r.Patch("/{id}/status", api.UpdateCrimeStatusHandler)
			r.Delete("/{id}", api.DeleteCrimeHandler)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(api.tokens))
		r.Post("/upload", api.UploadHandler)
	})
}

// Serve starts the HTTP server and the hourly session sweep. It blocks.
func (api *Api) Serve() error {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			api.auth.CleanupExpiredSessions()
		}
	}()

	addr := fmt.Sprintf(":%d", api.Config.APIPort)
	log.Printf("API listening on %s", addr)
	return http.ListenAndServe(addr, api.Router)
}
