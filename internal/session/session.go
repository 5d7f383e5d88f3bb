package session

import (
	"context"

	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/services"
)

// State is the authentication state of a [Manager].
type State int

const (
	Anonymous State = iota
	Validating
	Authenticated
	Invalid
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Validating:
		return "validating"
	case Authenticated:
		return "authenticated"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the manager state.
type Snapshot struct {
	State   State
	Session models.Session
}

// Role returns the session role, or [models.RoleNone] unless authenticated.
func (s Snapshot) Role() models.Role {
	if s.State != Authenticated {
		return models.RoleNone
	}
	return s.Session.Role
}

// EventKind identifies an [Event].
type EventKind int

const (
	// EventStateChanged is sent after every transition.
	EventStateChanged EventKind = iota
	// EventSessionExpired is sent once per teardown caused by a rejected credential.
	EventSessionExpired
)

func (k EventKind) String() string {
	if k == EventSessionExpired {
		return "session_expired"
	}
	return "state_changed"
}

// Event is delivered to the manager's [Listener].
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Listener receives manager events. It is called without the manager lock held and must not block.
type Listener func(Event)

// Store persists the session between runs.
type Store interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, session models.Session) error
	Clear(ctx context.Context) error
}

// Authenticator performs the login and session probe requests.
type Authenticator interface {
	Login(ctx context.Context, identifier, secret string) (*services.LoginResult, error)
	Me(ctx context.Context, credential string) (*models.Identity, error)
}
