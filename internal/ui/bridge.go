package ui

import (
	"sync/atomic"

	"github.com/desertthunder/catx/internal/session"
)

// SessionBridge turns session manager events into signals the model can wait on.
//
// It is the manager's single listener. Signals coalesce and the expired flag is consumed by the first
// reader, so any number of expiry events between two reads cause one redirect.
type SessionBridge struct {
	changed chan struct{}
	expired atomic.Bool
}

// NewSessionBridge creates a bridge and subscribes it to m.
func NewSessionBridge(m interface{ Subscribe(session.Listener) }) *SessionBridge {
	b := &SessionBridge{changed: make(chan struct{}, 1)}
	m.Subscribe(b.Listen)
	return b
}

// Listen is a [session.Listener]. It never blocks.
func (b *SessionBridge) Listen(e session.Event) {
	if e.Kind == session.EventSessionExpired {
		b.expired.Store(true)
	}
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// Changed signals after one or more events.
func (b *SessionBridge) Changed() <-chan struct{} { return b.changed }

// TakeExpired reports whether a session expired since the last call.
func (b *SessionBridge) TakeExpired() bool { return b.expired.Swap(false) }
