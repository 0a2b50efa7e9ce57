package handlers

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/ivankudzin/pawmatch/internal/transport/http/errors"
)

// HealthCheck probes one dependency; a nil check is skipped.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	storage HealthCheck
	redis   HealthCheck
}

func NewHealthHandler(storage, redis HealthCheck) *HealthHandler {
	return &HealthHandler{storage: storage, redis: redis}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}

	if h.storage != nil {
		if err := h.storage(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["storage"] = err.Error()
		}
	}
	// rate limiting fails open, so redis only reports
	if h.redis != nil {
		if err := h.redis(ctx); err != nil {
			body["redis"] = err.Error()
		}
	}

	httperrors.Write(w, status, body)
}
