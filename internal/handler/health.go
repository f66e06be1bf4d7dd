package handler

import (
	"context"
	"net/http"
	"time"
)

// LivenessMessage is the plain-text body of GET /.
const LivenessMessage = "Study Partner Server is running successfully!"

// Pinger is satisfied by repository.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Store     string    `json:"store"`
}

type HealthHandler struct {
	serviceName string
	version     string
	store       Pinger
}

func NewHealthHandler(serviceName, version string, store Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		store:       store,
	}
}

// HandleRoot answers the liveness probe.
//
// HTTP: GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(LivenessMessage))
}

// HandleHealth reports process and store health. The store gets one second
// to answer a ping.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status, storeStatus := "healthy", "up"

	pingCtx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()
	if err := h.store.Ping(pingCtx); err != nil {
		status, storeStatus = "degraded", "down"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Store:     storeStatus,
	})
}
