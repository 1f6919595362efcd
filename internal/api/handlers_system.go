package api

import (
	"html"
	"net/http"
	"strings"

	"github.com/mezmerize-audio/preampd/internal/auth"
	"github.com/mezmerize-audio/preampd/internal/hardware"
	"github.com/mezmerize-audio/preampd/internal/maintenance"
	"github.com/mezmerize-audio/preampd/internal/models"
)

// infoResponse is the /api/info payload: the static identity block plus
// the controller CPU temperature when the platform exposes one.
type infoResponse struct {
	models.Info
	CPUTempC *float64 `json:"cpu_temp_c,omitempty"`
}

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

func (h *Handlers) getInfo(w http.ResponseWriter, r *http.Request) {
	resp := infoResponse{Info: h.ctrl.State().Info}
	if t, err := hardware.ReadCPUTemp(); err == nil {
		resp.CPUTempC = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) factoryReset(w http.ResponseWriter, r *http.Request) {
	state, err := h.ctrl.FactoryReset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) standby(w http.ResponseWriter, r *http.Request) {
	state, err := h.ctrl.Standby(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) wake(w http.ResponseWriter, r *http.Request) {
	state, err := h.ctrl.Wake(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// createBackup triggers an immediate config backup and returns the file path.
func (h *Handlers) createBackup(w http.ResponseWriter, r *http.Request) {
	file, err := h.maint.RunBackupNow()
	if err != nil {
		writeError(w, models.ErrInternal("backup failed: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": file})
}

// listBackups returns the available backup archives.
func (h *Handlers) listBackups(w http.ResponseWriter, r *http.Request) {
	files, err := maintenance.ListBackups()
	if err != nil {
		writeError(w, models.ErrInternal("list backups: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"backups": files})
}

// loginPage renders a simple login HTML page.
func (h *Handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Preamp Login</title></head>
<body>
<h2>Preamp Login</h2>
<form method="POST" action="/auth/login">
  <input type="hidden" name="next" value="` + html.EscapeString(next) + `">
  <label>Password: <input type="password" name="password"></label>
  <button type="submit">Login</button>
</form>
</body>
</html>`))
}

// loginPost verifies the submitted password and starts a session by
// setting the session cookie to the matching user's access key.
func (h *Handlers) loginPost(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.FormValue("next"))
	key, ok := h.auth.Login(r.FormValue("password"))
	if !ok {
		writeError(w, models.ErrUnauthorized("invalid password"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, next, http.StatusFound)
}

// safeNext keeps post-login redirects on this host.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/api"
	}
	return next
}
