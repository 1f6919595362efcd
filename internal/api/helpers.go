// Package api implements the HTTP REST API for the preamplifier daemon.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mezmerize-audio/preampd/internal/auth"
	"github.com/mezmerize-audio/preampd/internal/maintenance"
	"github.com/mezmerize-audio/preampd/internal/models"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	ctrl   Controller
	auth   *auth.Service
	maint  *maintenance.Service
	events EventBus
}

// Controller is the interface the handlers use to drive the preamplifier.
// Every mutation returns the post-change state snapshot, so responses carry
// the same payload SSE subscribers receive.
type Controller interface {
	State() models.State
	VolumeUp(ctx context.Context) (models.State, error)
	VolumeDown(ctx context.Context) (models.State, error)
	SetVolume(ctx context.Context, upd models.VolumeUpdate) (models.State, error)
	ToggleMute(ctx context.Context) (models.State, error)
	SelectInput(ctx context.Context, input int) (models.State, error)
	PreviousInput(ctx context.Context) (models.State, error)
	UpdateInput(ctx context.Context, id int, upd models.InputUpdate) (models.State, error)
	UpdateTrigger(ctx context.Context, id int, upd models.TriggerUpdate) (models.State, error)
	UpdateSettings(ctx context.Context, upd models.SettingsUpdate) (models.State, error)
	UpdateDisplay(ctx context.Context, upd models.DisplayUpdate) (models.State, error)
	SaveCustomProfile(ctx context.Context) (models.State, error)
	LoadCustomProfile(ctx context.Context) (models.State, error)
	FactoryReset(ctx context.Context) (models.State, error)
	Standby(ctx context.Context) (models.State, error)
	Wake(ctx context.Context) (models.State, error)
}

// EventBus is the interface for subscribing to state change events.
type EventBus interface {
	Subscribe(id string) <-chan models.State
	Unsubscribe(id string)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an AppError as a JSON response.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if appErr, ok := err.(*models.AppError); ok {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// intParam reads an integer path parameter by name.
func intParam(r *http.Request, name string) (int, error) {
	s := chi.URLParam(r, name)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, models.ErrBadRequest("invalid " + name + " parameter")
	}
	return n, nil
}
