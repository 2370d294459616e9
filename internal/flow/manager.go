package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iwvelando/company-valuation/pkg/constants"
	"go.uber.org/zap"
)

var ErrFlowNotFound = errors.New("flow not found")

// Manager keeps the running flows by id.
type Manager struct {
	mu    sync.Mutex
	flows map[string]*Flow
	deps  Deps
	ttl   time.Duration
}

// NewManager creates a manager whose flows expire after ttl without activity.
func NewManager(deps Deps, ttl time.Duration) (*Manager, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = constants.DefaultFlowIdleTTL
	}
	return &Manager{
		flows: make(map[string]*Flow),
		deps:  deps,
		ttl:   ttl,
	}, nil
}

// Reports is the history completed report flows write to.
func (m *Manager) Reports() *History {
	return m.deps.Reports
}

// Run removes idle flows until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Cleanup()
		}
	}
}

// Cleanup drops every flow idle for longer than the ttl and returns how many
// were dropped.
func (m *Manager) Cleanup() int {
	cutoff := m.deps.Clock().Add(-m.ttl)

	m.mu.Lock()
	var stale []*Flow
	for id, f := range m.flows {
		if f.UpdatedAt().Before(cutoff) {
			stale = append(stale, f)
			delete(m.flows, id)
		}
	}
	m.mu.Unlock()

	for _, f := range stale {
		f.Close()
	}
	if len(stale) > 0 {
		m.deps.Logger.Info("idle flows removed",
			zap.String("op", "flow.Cleanup"),
			zap.Int("count", len(stale)),
		)
	}
	return len(stale)
}

// Start mounts a new flow.
func (m *Manager) Start(kind Kind, owner string) (*Flow, error) {
	f, err := New(kind, owner, m.deps)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.flows[f.ID()] = f
	m.mu.Unlock()

	m.deps.Logger.Debug("flow started",
		zap.String("op", "flow.Start"),
		zap.String("flow", f.ID()),
		zap.Stringer("kind", kind),
	)
	return f, nil
}

// Get returns a running flow.
func (m *Manager) Get(id string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return f, nil
}

// Remove stops and forgets a flow.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	f, ok := m.flows[id]
	delete(m.flows, id)
	m.mu.Unlock()

	if !ok {
		return ErrFlowNotFound
	}
	f.Close()
	return nil
}

// Advance submits the current step of a flow. When the flow completes it is
// forgotten, and a flow named by the handoff is mounted in its place.
func (m *Manager) Advance(ctx context.Context, id string) (Outcome, error) {
	f, err := m.Get(id)
	if err != nil {
		return Outcome{}, err
	}

	out, err := f.Advance(ctx)
	if err != nil || !out.Finished {
		return out, err
	}

	m.mu.Lock()
	delete(m.flows, id)
	m.mu.Unlock()
	f.Close()

	if h := out.Handoff; h != nil && h.Next != kindNone {
		next, err := m.Start(h.Next, h.Owner)
		if err != nil {
			return out, err
		}
		out.Handoff = f.attachNext(next)
	}
	return out, nil
}

// Len is the number of running flows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}
