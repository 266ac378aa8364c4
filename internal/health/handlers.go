package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady toggles readiness; the server clears it while draining.
func SetReady(v bool) { ready.Store(v) }

// PayeeChecker reports whether payment payloads can be generated.
type PayeeChecker interface {
	Configured() bool
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Payee PayeeChecker
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness. A missing pix key is reported but does not fail
// readiness because quotes fall back to a placeholder payload.
func (h Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	if !ready.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	pixStatus := "placeholder"
	if h.Payee != nil && h.Payee.Configured() {
		pixStatus = "ok"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"pix":    pixStatus,
	})
}
