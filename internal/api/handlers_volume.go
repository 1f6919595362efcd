package api

import (
	"encoding/json"
	"net/http"

	"github.com/mezmerize-audio/preampd/internal/models"
)

func (h *Handlers) volumeUp(w http.ResponseWriter, r *http.Request) {
	state, err := h.ctrl.VolumeUp(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) volumeDown(w http.ResponseWriter, r *http.Request) {
	state, err := h.ctrl.VolumeDown(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) setVolume(w http.ResponseWriter, r *http.Request) {
	var upd models.VolumeUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	state, err := h.ctrl.SetVolume(r.Context(), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) toggleMute(w http.ResponseWriter, r *http.Request) {
	state, err := h.ctrl.ToggleMute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
