package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/shared"
	"golang.org/x/oauth2"
)

// Manager owns the session state machine.
type Manager struct {
	auth   Authenticator
	store  Store
	logger *log.Logger

	mu       sync.Mutex
	state    State
	session  models.Session
	epoch    uint64
	listener Listener
}

// NewManager creates an anonymous manager. Call [Manager.Initialize] to restore a persisted session.
func NewManager(auth Authenticator, store Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{auth: auth, store: store, logger: logger, state: Anonymous}
}

// SetLogger replaces the manager's logger. Call it before the manager is shared.
func (m *Manager) SetLogger(l *log.Logger) {
	m.logger = l
}

// Subscribe sets the single listener, replacing any previous one.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{State: m.state, Session: m.session.Clone()}
}

// Token returns the current credential.
//
// It implements [oauth2.TokenSource] so the HTTP client can attach the credential to every request.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Authenticated || m.session.Credential == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: m.session.Credential, TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = (*Manager)(nil)

// Initialize restores the persisted session.
//
// Without a persisted credential the manager stays anonymous. Otherwise the credential is probed and the
// session becomes authenticated on success. Any failure clears the persisted session, leaves the manager
// anonymous and is returned. It does nothing unless the manager is anonymous.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Anonymous {
		m.mu.Unlock()
		return nil
	}

	persisted, err := m.store.Load(ctx)
	if err != nil {
		m.clearStoreLocked(ctx)
		m.mu.Unlock()
		return fmt.Errorf("failed to load session: %w", err)
	}

	if persisted.Credential == "" {
		if persisted.Role != models.RoleNone || persisted.UserID != nil {
			m.logger.Warn("discarding partial persisted session")
			m.clearStoreLocked(ctx)
		}
		m.mu.Unlock()
		return nil
	}

	m.epoch++
	epoch := m.epoch
	m.state = Validating
	validating := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(Event{Kind: EventStateChanged, Snapshot: validating})
	m.logger.Debug("validating persisted session")

	identity, probeErr := m.auth.Me(ctx, persisted.Credential)

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.logger.Debug("discarding superseded session probe")
		return nil
	}

	var next models.Session
	if probeErr == nil {
		next = models.SessionFromIdentity(persisted.Credential, *identity)
		if err := next.Validate(); err != nil {
			probeErr = fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		} else if err := m.store.Save(ctx, next); err != nil {
			probeErr = fmt.Errorf("failed to persist session: %w", err)
		}
	}

	if probeErr != nil {
		m.state = Invalid
		m.session = models.Session{}
		invalid := m.snapshotLocked()
		m.clearStoreLocked(ctx)
		m.state = Anonymous
		anonymous := m.snapshotLocked()
		m.mu.Unlock()

		m.logger.Warn("persisted session is invalid", "error", probeErr)
		m.emit(Event{Kind: EventStateChanged, Snapshot: invalid})
		m.emit(Event{Kind: EventStateChanged, Snapshot: anonymous})
		return fmt.Errorf("session validation failed: %w", probeErr)
	}

	m.state = Authenticated
	m.session = next
	authenticated := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("session restored", "role", next.Role)
	m.emit(Event{Kind: EventStateChanged, Snapshot: authenticated})
	return nil
}

// Login exchanges an identifier and secret for a session.
//
// Empty arguments fail with [shared.ErrValidation] before any request is made. On failure the state is
// unchanged and the cause ([shared.ErrAuthRejected], [shared.ErrNetworkFailure], ...) is returned. The
// session is persisted before it becomes visible, so no reader sees a credential without its role. A login
// overtaken by a logout or another login returns an error wrapping [shared.ErrStale] and changes nothing.
// A login started while a persisted session is being validated abandons that probe and clears the store.
func (m *Manager) Login(ctx context.Context, identifier, secret string) error {
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("%w: identifier is required", shared.ErrValidation)
	}
	if secret == "" {
		return fmt.Errorf("%w: secret is required", shared.ErrValidation)
	}

	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	superseded := m.state == Validating
	if superseded {
		m.state = Anonymous
		m.clearStoreLocked(ctx)
	}
	anonymous := m.snapshotLocked()
	m.mu.Unlock()

	if superseded {
		m.logger.Debug("login supersedes session probe")
		m.emit(Event{Kind: EventStateChanged, Snapshot: anonymous})
	}

	result, err := m.auth.Login(ctx, identifier, secret)
	if err != nil {
		m.logger.Warn("login failed", "identifier", identifier, "error", err)
		return fmt.Errorf("login failed: %w", err)
	}

	next := models.SessionFromIdentity(result.Credential, result.Identity)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: invalid login response: %v", shared.ErrAPIRequest, err)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return fmt.Errorf("%w: login superseded", shared.ErrStale)
	}

	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.state = Authenticated
	m.session = next
	authenticated := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("logged in", "role", next.Role, "name", next.DisplayName)
	m.emit(Event{Kind: EventStateChanged, Snapshot: authenticated})
	return nil
}

// Logout clears the session and the persisted store. It never fails; store errors are logged.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.epoch++
	changed := m.state != Anonymous
	m.state = Anonymous
	m.session = models.Session{}
	m.clearStoreLocked(context.Background())
	anonymous := m.snapshotLocked()
	m.mu.Unlock()

	if changed {
		m.logger.Info("logged out")
		m.emit(Event{Kind: EventStateChanged, Snapshot: anonymous})
	}
}

// OnUnauthorized tears the session down after credential was rejected by the backend.
//
// Rejections of a credential that is no longer current (already torn down, replaced by a new login, or
// never authenticated) are ignored, so any number of overlapping rejections produce one teardown and
// one [EventSessionExpired].
func (m *Manager) OnUnauthorized(credential string) {
	m.mu.Lock()
	if credential == "" || m.state != Authenticated || m.session.Credential != credential {
		m.mu.Unlock()
		m.logger.Debug("ignoring rejection of a stale credential")
		return
	}

	m.epoch++
	m.state = Anonymous
	m.session = models.Session{}
	m.clearStoreLocked(context.Background())
	anonymous := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Warn("session expired")
	m.emit(Event{Kind: EventStateChanged, Snapshot: anonymous})
	m.emit(Event{Kind: EventSessionExpired, Snapshot: anonymous})
}

// clearStoreLocked clears the persisted session even when ctx is already cancelled.
func (m *Manager) clearStoreLocked(ctx context.Context) {
	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Error("failed to clear persisted session", "error", err)
	}
}

func (m *Manager) emit(e Event) {
	m.mu.Lock()
	l := m.listener
	m.mu.Unlock()

	if l != nil {
		l(e)
	}
}
