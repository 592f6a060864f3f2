package delivery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/SlavaShagalov/hotel-admin/internal/register/delivery/errors"
	"github.com/SlavaShagalov/hotel-admin/internal/register/usecase"
)

// ControllerFactory builds the form controller of a new session around its navigator.
type ControllerFactory func(navigator usecase.Navigator) *usecase.FormController

type Session struct {
	ID         string
	Controller *usecase.FormController

	lastSeen time.Time
	target   atomic.Value
}

// Target is the path the controller navigated to, empty while the form is shown.
func (s *Session) Target() string {
	target, _ := s.target.Load().(string)
	return target
}

// Sessions keeps one form controller per visitor. Idle sessions expire after ttl
// and are closed, which cancels their timers. At most limit sessions live at once.
type Sessions struct {
	factory ControllerFactory
	clock   clockwork.Clock
	ttl     time.Duration
	limit   int

	mu    sync.Mutex
	items map[string]*Session
}

func NewSessions(factory ControllerFactory, clock clockwork.Clock, ttl time.Duration, limit int) *Sessions {
	return &Sessions{
		factory: factory,
		clock:   clock,
		ttl:     ttl,
		limit:   limit,
		items:   make(map[string]*Session),
	}
}

// Lookup returns the live session with the given id without creating one.
func (s *Sessions) Lookup(id string) (*Session, bool) {
	s.mu.Lock()
	session, ok := s.liveLocked(id, s.clock.Now())
	s.mu.Unlock()

	return session, ok
}

// Acquire returns the live session with the given id or starts a new one.
func (s *Sessions) Acquire(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if session, ok := s.liveLocked(id, now); ok {
		return session, nil
	}

	if s.limit > 0 && len(s.items) >= s.limit {
		s.sweepLocked(now)
		if len(s.items) >= s.limit {
			return nil, errors.ErrTooManySessions
		}
	}

	session := &Session{
		ID:       uuid.NewString(),
		lastSeen: now,
	}
	session.Controller = s.factory(usecase.NavigatorFunc(func(path string) {
		session.target.Store(path)
	}))
	s.items[session.ID] = session

	return session, nil
}

func (s *Sessions) Release(id string) {
	s.mu.Lock()
	session, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()

	if ok {
		session.Controller.Close()
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Sweep closes every expired session.
func (s *Sessions) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(s.clock.Now())
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep()
		}
	}
}

// Close unmounts every session.
func (s *Sessions) Close() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range items {
		session.Controller.Close()
	}
}

func (s *Sessions) liveLocked(id string, now time.Time) (*Session, bool) {
	session, ok := s.items[id]
	if !ok {
		return nil, false
	}

	if s.expired(session, now) {
		delete(s.items, id)
		session.Controller.Close()
		return nil, false
	}

	session.lastSeen = now
	return session, true
}

func (s *Sessions) sweepLocked(now time.Time) {
	for id, session := range s.items {
		if s.expired(session, now) {
			delete(s.items, id)
			session.Controller.Close()
		}
	}
}

func (s *Sessions) expired(session *Session, now time.Time) bool {
	return now.Sub(session.lastSeen) > s.ttl
}
