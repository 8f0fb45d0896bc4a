package service

import (
	"context"
	"fmt"
	"time"

	"github.com/duetapp/notify/internal/store"
)

// HealthService defines the interface for checking application health
type HealthService interface {
	Check(ctx context.Context) map[string]string
}

type healthService struct {
	store store.Store
}

// NewHealthService creates a readiness checker over the critical
// dependencies.
func NewHealthService(st store.Store) HealthService {
	return &healthService{store: st}
}

// Check performs health checks with a timeout so a wedged dependency cannot
// hang the probe.
func (s *healthService) Check(ctx context.Context) map[string]string {
	healthStatus := make(map[string]string)

	dbCtx, dbCancel := context.WithTimeout(ctx, 2*time.Second)
	defer dbCancel()

	if err := s.store.Ping(dbCtx); err != nil {
		healthStatus["db"] = fmt.Sprintf("error: %s", err.Error())
	} else {
		healthStatus["db"] = "ok"
	}

	return healthStatus
}
