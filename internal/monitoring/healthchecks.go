package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/ideaflow/internal/metrics"
)

// CHECK_TIMEOUT bounds a single dependency check.
const CHECK_TIMEOUT = 3 * time.Second

type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Monitor periodically runs its checks and publishes the combined result to
// healthy. The flag is true only when every check passes.
type Monitor struct {
	checks   []HealthCheck
	healthy  *atomic.Bool
	clock    clockwork.Clock
	interval time.Duration
}

func NewMonitor(clock clockwork.Clock, interval time.Duration, healthy *atomic.Bool, checks ...HealthCheck) *Monitor {
	return &Monitor{
		checks:   checks,
		healthy:  healthy,
		clock:    clock,
		interval: interval,
	}
}

// CheckOnce runs every check, stores the combined result and returns it.
func (m *Monitor) CheckOnce(ctx context.Context) bool {
	allHealthy := true
	for _, hc := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, CHECK_TIMEOUT)
		err := hc.Check(checkCtx)
		cancel()

		if err != nil {
			allHealthy = false
			metrics.DependencyHealthy.WithLabelValues(hc.Name).Set(0)
			slog.Warn("[HealthCheck] Dependency is unhealthy",
				slog.String("dependency", hc.Name),
				slog.String("error", err.Error()))
			continue
		}
		metrics.DependencyHealthy.WithLabelValues(hc.Name).Set(1)
	}

	m.healthy.Store(allHealthy)
	return allHealthy
}

// Run checks immediately and then on every tick until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.CheckOnce(ctx)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.CheckOnce(ctx)
		}
	}
}
