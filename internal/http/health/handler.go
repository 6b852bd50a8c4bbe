// Package health serves liveness and readiness probes for the admin listener.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

const (
	StatusHealthy  = "healthy"
	StatusReady    = "ready"
	StatusDraining = "draining"
)

// Response is the payload for the health endpoints.
type Response struct {
	Status string `json:"status"`
}

// Checker tracks whether the process should keep receiving traffic.
type Checker struct {
	draining atomic.Bool
}

// NewChecker returns a Checker that reports ready.
func NewChecker() *Checker {
	return &Checker{}
}

// SetDraining makes Ready report 503. Load balancers only observe it while the
// admin listener is still up, which the server guarantees for DRAIN_DELAY.
func (c *Checker) SetDraining() {
	c.draining.Store(true)
}

// Live answers 200 while the process is able to serve HTTP at all.
func (c *Checker) Live(w http.ResponseWriter, _ *http.Request) {
	write(w, http.StatusOK, StatusHealthy)
}

// Ready answers 200 until SetDraining is called, then 503.
func (c *Checker) Ready(w http.ResponseWriter, _ *http.Request) {
	if c.draining.Load() {
		write(w, http.StatusServiceUnavailable, StatusDraining)
		return
	}
	write(w, http.StatusOK, StatusReady)
}

func write(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Status: value})
}
