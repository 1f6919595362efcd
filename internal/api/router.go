package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mezmerize-audio/preampd/internal/auth"
	"github.com/mezmerize-audio/preampd/internal/maintenance"
)

// NewRouter creates and returns the main HTTP router.
func NewRouter(ctrl Controller, authSvc *auth.Service, maint *maintenance.Service, bus EventBus) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{ctrl: ctrl, auth: authSvc, maint: maint, events: bus}

	// Auth routes (no auth required)
	r.Group(func(r chi.Router) {
		r.Get("/auth/login", h.loginPage)
		r.Post("/auth/login", h.loginPost)
	})

	// API routes (auth required)
	r.Group(func(r chi.Router) {
		r.Use(authSvc.Middleware)

		// System state
		r.Get("/api", h.getState)
		r.Get("/api/", h.getState)

		// Volume
		r.Post("/api/volume/up", h.volumeUp)
		r.Post("/api/volume/down", h.volumeDown)
		r.Patch("/api/volume", h.setVolume)
		r.Post("/api/mute", h.toggleMute)

		// Inputs
		r.Post("/api/inputs/previous", h.previousInput)
		r.Post("/api/inputs/{id}/select", h.selectInput)
		r.Patch("/api/inputs/{id}", h.setInput)

		// Triggers
		r.Patch("/api/triggers/{id}", h.setTrigger)

		// Settings
		r.Patch("/api/settings", h.setSettings)
		r.Patch("/api/display", h.setDisplay)
		r.Post("/api/profile/save", h.saveProfile)
		r.Post("/api/profile/load", h.loadProfile)
		r.Post("/api/factory-reset", h.factoryReset)

		// Power
		r.Post("/api/standby", h.standby)
		r.Post("/api/wake", h.wake)

		// System
		r.Get("/api/info", h.getInfo)
		r.Get("/api/backups", h.listBackups)
		r.Post("/api/backup", h.createBackup)

		// SSE
		r.Get("/api/subscribe", h.sseEvents)
	})

	return r
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, api-key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
