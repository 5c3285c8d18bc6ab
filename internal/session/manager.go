package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"gopetro/domain/core"
	"gopetro/domain/view"
	"gopetro/internal"
	"gopetro/internal/dataset"
	viewctl "gopetro/internal/view"
)

// RenderSink receives every render of every session, e.g. for SSE fan-out
type RenderSink func(id core.SessionID, rd view.RenderDescription)

// Session is one user's view: its own controller over the shared dataset
type Session struct {
	ID         core.SessionID
	Controller *viewctl.Controller
	CreatedAt  core.Timestamp

	lastActive atomic.Int64
}

// LastActive returns when the session last handled a request
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// Manager creates, looks up and expires view sessions. Sessions never share
// an axis selection; they share the dataset store read-only.
type Manager struct {
	store  *dataset.Store
	ttl    time.Duration
	logger *internal.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
	sink     RenderSink
}

// NewManager creates a manager and subscribes it to dataset swaps so live
// sessions re-render when the upstream data changes
func NewManager(store *dataset.Store, ttl time.Duration, logger *internal.Logger) *Manager {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	m := &Manager{
		store:    store,
		ttl:      ttl,
		logger:   logger.Named("session"),
		now:      time.Now,
		sessions: make(map[core.SessionID]*Session),
	}
	store.OnSwap(func(_, _ *dataset.Dataset) { m.RerenderAll() })
	return m
}

// SetRenderSink installs the fan-out for renders. Call before creating sessions.
func (m *Manager) SetRenderSink(sink RenderSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = sink
}

// Create starts a session and returns it with its initial render
func (m *Manager) Create() (*Session, view.RenderDescription, error) {
	id := core.NewSessionID()
	ctl := viewctl.NewController(m.logger.With("session", id.String()))

	m.mu.RLock()
	sink := m.sink
	m.mu.RUnlock()
	if sink != nil {
		ctl.Subscribe(func(rd view.RenderDescription) { sink(id, rd) })
	}

	rd, err := ctl.Initialize(m.store)
	if err != nil {
		return nil, view.RenderDescription{}, err
	}

	s := &Session{ID: id, Controller: ctl, CreatedAt: core.Now()}
	s.touch(m.now())

	m.mu.Lock()
	m.sessions[id] = s
	total := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("Session %s created (%d active)", id, total)
	return s, rd, nil
}

// Get returns the session and marks it active
func (m *Manager) Get(id core.SessionID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Delete ends a session
func (m *Manager) Delete(id core.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return core.ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.logger.Info("Session %s ended (%d active)", id, len(m.sessions))
	return nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// RerenderAll re-renders every session against the current dataset
func (m *Manager) RerenderAll() {
	sessions := m.snapshot()
	for _, s := range sessions {
		if _, err := s.Controller.Render(); err != nil {
			m.logger.Warn("Re-render of session %s failed: %v", s.ID, err)
		}
	}
	if len(sessions) > 0 {
		m.logger.Debug("Re-rendered %d sessions after dataset swap", len(sessions))
	}
}

// Sweep removes sessions idle for longer than the TTL and returns how many
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Expired %d idle sessions (%d active)", removed, len(m.sessions))
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
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
