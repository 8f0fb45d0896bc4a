package handler

import (
	"encoding/json"
	"net/http"

	"github.com/duetapp/notify/internal/service"
)

type HealthHandler struct {
	healthSvc service.HealthService
}

func NewHealthHandler(healthSvc service.HealthService) *HealthHandler {
	return &HealthHandler{healthSvc: healthSvc}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Readiness checks the critical dependencies.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	data := h.healthSvc.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if status, ok := data["db"]; ok && status == "ok" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(data)
}
