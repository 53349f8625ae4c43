// Package session tracks the signed-in dashboard user and notifies listeners
// when the authentication state changes.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmynk/circles/internal/models"
)

// Event names an authentication state change.
type Event string

const (
	EventSignedIn    Event = "SIGNED_IN"
	EventSignedOut   Event = "SIGNED_OUT"
	EventUserUpdated Event = "USER_UPDATED"
)

// Session is the signed-in state: the user and the token proving it.
type Session struct {
	User        *models.User
	AccessToken string
}

// Backend is the hosted authentication service.
type Backend interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Session, error)
	// GetUser returns nil without error when nobody is signed in.
	GetUser(ctx context.Context) (*models.User, error)
	SignOut(ctx context.Context) error
}

// Listener receives auth state changes. session is nil after sign-out.
type Listener func(event Event, session *Session)

type notification struct {
	event   Event
	session *Session
}

// Manager wraps a Backend and delivers state changes to listeners
// asynchronously, in the order they happened, on a single goroutine.
type Manager struct {
	backend Backend

	mu        sync.Mutex
	current   *Session
	listeners map[int]Listener
	nextID    int
	pending   []notification

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

// NewManager starts a manager. Call Close to stop its delivery goroutine.
func NewManager(backend Backend) *Manager {
	m := &Manager{
		backend:   backend,
		listeners: make(map[int]Listener),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go m.deliver()
	return m
}

// Close stops event delivery. Pending events are dropped.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}

// Current returns the active session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// OnAuthStateChange registers fn and returns a function that unregisters it.
func (m *Manager) OnAuthStateChange(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// SignInWithPassword signs in and emits SIGNED_IN on success.
func (m *Manager) SignInWithPassword(ctx context.Context, email, password string) (*models.User, error) {
	s, err := m.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.setSession(EventSignedIn, s)
	return s.User, nil
}

// SignUp creates an account. The new account is signed in and SIGNED_IN is emitted.
func (m *Manager) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*models.User, error) {
	s, err := m.backend.SignUp(ctx, email, password, metadata)
	if err != nil {
		return nil, err
	}
	m.setSession(EventSignedIn, s)
	return s.User, nil
}

// GetUser asks the backend who is signed in and reconciles the local session
// with the answer, emitting events for any difference.
func (m *Manager) GetUser(ctx context.Context) (*models.User, error) {
	user, err := m.backend.GetUser(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case user == nil && m.current != nil:
		m.current = nil
		m.enqueueLocked(EventSignedOut, nil)
	case user != nil && m.current == nil:
		m.current = &Session{User: user}
		m.enqueueLocked(EventSignedIn, m.current)
	case user != nil && !sameUser(m.current.User, user):
		m.current = &Session{User: user, AccessToken: m.current.AccessToken}
		m.enqueueLocked(EventUserUpdated, m.current)
	}
	return user, nil
}

// SignOut ends the session. The local session is cleared and SIGNED_OUT is
// emitted even when the backend call fails; the error is still returned.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.backend.SignOut(ctx)
	if err != nil {
		slog.Warn("Sign out failed", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current = nil
		m.enqueueLocked(EventSignedOut, nil)
	}
	return err
}

func (m *Manager) setSession(event Event, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.enqueueLocked(event, s)
}

func (m *Manager) enqueueLocked(event Event, s *Session) {
	m.pending = append(m.pending, notification{event: event, session: s})
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) deliver() {
	for {
		select {
		case <-m.done:
			return
		case <-m.wake:
		}

		for {
			m.mu.Lock()
			if len(m.pending) == 0 {
				m.mu.Unlock()
				break
			}
			n := m.pending[0]
			m.pending = m.pending[1:]
			listeners := make([]Listener, 0, len(m.listeners))
			for id := 0; id < m.nextID; id++ {
				if fn, ok := m.listeners[id]; ok {
					listeners = append(listeners, fn)
				}
			}
			m.mu.Unlock()

			for _, fn := range listeners {
				fn(n.event, n.session)
			}
		}
	}
}

func sameUser(a, b *models.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Email == b.Email && a.DisplayName == b.DisplayName
}
