package session

import (
	"context"
	"time"
)

// Run sweeps the registry every interval until ctx is done, so idle sessions
// are evicted even when no new queries arrive.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.cfg.InactivityLimit
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
