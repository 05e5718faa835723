// Package audittest provides an in-memory audit sink for tests.
package audittest

import (
	"context"
	"sync"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// Memory collects events in emission order.
type Memory struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (m *Memory) Emit(_ context.Context, e model.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Events() []model.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditEvent(nil), m.events...)
}

// Actions returns how many events of each action were recorded.
func (m *Memory) Actions() map[model.AuditAction]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[model.AuditAction]int{}
	for _, e := range m.events {
		out[e.Action]++
	}
	return out
}
