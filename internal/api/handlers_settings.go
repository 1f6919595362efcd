package api

import (
	"encoding/json"
	"net/http"

	"github.com/mezmerize-audio/preampd/internal/models"
)

func (h *Handlers) setSettings(w http.ResponseWriter, r *http.Request) {
	var upd models.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	state, err := h.ctrl.UpdateSettings(r.Context(), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) setDisplay(w http.ResponseWriter, r *http.Request) {
	var upd models.DisplayUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	state, err := h.ctrl.UpdateDisplay(r.Context(), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) saveProfile(w http.ResponseWriter, r *http.Request) {
	state, err := h.ctrl.SaveCustomProfile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) loadProfile(w http.ResponseWriter, r *http.Request) {
	state, err := h.ctrl.LoadCustomProfile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
