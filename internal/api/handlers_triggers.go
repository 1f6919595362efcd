package api

import (
	"encoding/json"
	"net/http"

	"github.com/mezmerize-audio/preampd/internal/models"
)

func (h *Handlers) setTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var upd models.TriggerUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	state, err := h.ctrl.UpdateTrigger(r.Context(), id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
