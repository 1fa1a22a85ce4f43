// Package handlers implements the kioskd HTTP endpoints.
package handlers

import (
	"context"
	"net/http"

	"github.com/marmos91/kioskd/pkg/session"
)

// SessionController is the reconciliation surface the handlers drive.
// *session.Reconciler satisfies it; tests substitute fakes.
type SessionController interface {
	Status(ctx context.Context) session.Status
	EnsureMode(ctx context.Context, force, wantKiosk bool) (int, session.Result)
	RestartStack(ctx context.Context) session.Status
}

// SessionHandler handles the mode, kiosk/show, and restart endpoints.
type SessionHandler struct {
	ctrl SessionController
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(ctrl SessionController) *SessionHandler {
	return &SessionHandler{ctrl: ctrl}
}

// statusResponse is the body for the read-only status endpoints.
type statusResponse struct {
	session.Status
	OK bool `json:"ok"`
}

// restartResponse is the body for the unconditional restart endpoints.
type restartResponse struct {
	session.Status
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// forced reports whether the request asked for forced reconciliation.
func forced(r *http.Request) bool {
	return r.URL.Query().Get("force") == "1"
}

// Status handles GET /, /debug, and /mode: a status snapshot with no
// mutation.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, statusResponse{
		Status: h.ctrl.Status(r.Context()),
		OK:     true,
	})
}

// mutationContext detaches the request context for the mutating paths: a
// client disconnect must not kill the mode script or abort readiness
// waits halfway through a convergence run.
func mutationContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// Kiosk handles GET /kiosk and /hide: converge on kiosk mode.
func (h *SessionHandler) Kiosk(w http.ResponseWriter, r *http.Request) {
	code, result := h.ctrl.EnsureMode(mutationContext(r), forced(r), true)
	WriteJSON(w, code, result)
}

// Show handles GET /show and /desktop: converge on normal mode.
func (h *SessionHandler) Show(w http.ResponseWriter, r *http.Request) {
	code, result := h.ctrl.EnsureMode(mutationContext(r), forced(r), false)
	WriteJSON(w, code, result)
}

// Restart handles GET /restart and /reset: unconditional stop+start of
// all managed services, independent of prior mode state.
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	status := h.ctrl.RestartStack(mutationContext(r))
	WriteJSON(w, http.StatusOK, restartResponse{
		Status:  status,
		OK:      true,
		Message: session.MsgRestarted,
	})
}

// NotFound handles every unrouted path.
func (h *SessionHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteNotFound(w, r.URL.Path)
}
