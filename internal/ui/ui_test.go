package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/catx/internal/guard"
	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/search"
	"github.com/desertthunder/catx/internal/session"
	"github.com/desertthunder/catx/internal/shared"
	tu "github.com/desertthunder/catx/internal/testing"
)

type fakeSession struct {
	mu       sync.Mutex
	snap     session.Snapshot
	loginErr error
	logouts  int
}

func (f *fakeSession) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) Initialize(context.Context) error { return nil }

func (f *fakeSession) Login(ctx context.Context, identifier, secret string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.authenticate(models.RoleArtist)
	return nil
}

func (f *fakeSession) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.snap = session.Snapshot{State: session.Anonymous}
}

func (f *fakeSession) authenticate(role models.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := models.Session{Credential: "T", Role: role, DisplayName: "Alice"}
	if role == models.RoleArtist {
		s.ArtistProfileID = tu.Int64(42)
	}
	f.snap = session.Snapshot{State: session.Authenticated, Session: s}
}

type fakeSearch struct {
	texts   []string
	flushes int
	snap    search.Snapshot
	changes chan struct{}
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{changes: make(chan struct{}, 1)}
}

func (f *fakeSearch) SetText(text string)       { f.texts = append(f.texts, text) }
func (f *fakeSearch) Flush()                    { f.flushes++ }
func (f *fakeSearch) Snapshot() search.Snapshot { return f.snap }
func (f *fakeSearch) Changes() <-chan struct{}  { return f.changes }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel() (*Model, *fakeSession, *fakeSearch) {
	sess := &fakeSession{}
	coord := newFakeSearch()
	m := NewModel(context.Background(), sess, coord, nil, nil)
	return m, sess, coord
}

func TestNavigation(t *testing.T) {
	t.Run("Anonymous Dashboard Redirects To Login", func(t *testing.T) {
		m, _, _ := newTestModel()

		m.Update(runes("d"))
		if m.Current() != guard.Login {
			t.Errorf("expected %s, got %s", guard.Login, m.Current())
		}
	})

	t.Run("Session Change Re-resolves Current View", func(t *testing.T) {
		m, sess, _ := newTestModel()
		m.Update(runes("l"))

		sess.authenticate(models.RoleArtist)
		m.Update(sessionChangedMsg(false))

		if m.Current() != guard.ArtistDashboard {
			t.Errorf("expected %s, got %s", guard.ArtistDashboard, m.Current())
		}
	})

	t.Run("Logout From Dashboard", func(t *testing.T) {
		m, sess, _ := newTestModel()
		sess.authenticate(models.RoleListener)
		m.Update(runes("d"))
		if m.Current() != guard.ListenerDashboard {
			t.Fatalf("expected %s, got %s", guard.ListenerDashboard, m.Current())
		}

		m.Update(runes("o"))
		if sess.logouts != 1 {
			t.Errorf("expected one logout, got %d", sess.logouts)
		}
		if m.Current() != guard.Login {
			t.Errorf("expected dashboard to be denied after logout, got %s", m.Current())
		}
	})

	t.Run("Escape Returns Home", func(t *testing.T) {
		m, _, _ := newTestModel()
		m.Update(runes("s"))
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.Current() != guard.Home {
			t.Errorf("expected %s, got %s", guard.Home, m.Current())
		}
	})
}

func TestSessionExpiry(t *testing.T) {
	t.Run("Redirects To Login", func(t *testing.T) {
		m, sess, _ := newTestModel()
		sess.authenticate(models.RoleListener)
		m.Update(runes("d"))

		sess.Logout()
		m.Update(sessionChangedMsg(true))

		if m.Current() != guard.Login {
			t.Errorf("expected %s, got %s", guard.Login, m.Current())
		}
		if !strings.Contains(m.View(), expiredNotice) {
			t.Error("expected expired notice to be rendered")
		}
	})

	t.Run("Bridge Reports Expiry Once", func(t *testing.T) {
		bridge := NewSessionBridge(session.NewManager(nil, nil, nil))

		for range 3 {
			bridge.Listen(session.Event{Kind: session.EventStateChanged})
			bridge.Listen(session.Event{Kind: session.EventSessionExpired})
		}

		select {
		case <-bridge.Changed():
		default:
			t.Fatal("expected a change signal")
		}
		if !bridge.TakeExpired() {
			t.Error("expected expiry to be reported")
		}
		if bridge.TakeExpired() {
			t.Error("expected expiry to be reported only once")
		}
	})

	t.Run("Wait For Session Reports Expiry", func(t *testing.T) {
		m, _, _ := newTestModel()
		manager := session.NewManager(nil, nil, nil)
		m.bridge = NewSessionBridge(manager)

		cmd := m.waitForSession()
		m.bridge.Listen(session.Event{Kind: session.EventSessionExpired})

		msg, ok := cmd().(Msg)
		if !ok || msg.kind != MsgSessionChanged || msg.data != true {
			t.Errorf("expected expired session message, got %+v", msg)
		}
	})
}

func TestSearchView(t *testing.T) {
	t.Run("Typing Feeds The Coordinator", func(t *testing.T) {
		m, _, coord := newTestModel()
		m.Update(runes("s"))

		m.Update(runes("b"))
		m.Update(runes("l"))
		m.Update(tea.KeyMsg{Type: tea.KeyBackspace})

		want := []string{"b", "bl", "b"}
		if strings.Join(coord.texts, ",") != strings.Join(want, ",") {
			t.Errorf("expected edits %v, got %v", want, coord.texts)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if coord.flushes != 1 {
			t.Errorf("expected one flush, got %d", coord.flushes)
		}
	})

	t.Run("Results Filtered By View", func(t *testing.T) {
		m, _, coord := newTestModel()
		coord.snap = search.Snapshot{
			Phase: search.Settled,
			Results: models.SearchResultSet{SearchResults: models.SearchResults{
				Tracks:  []models.TrackSummary{{ID: 1, Title: "Blue Song"}},
				Artists: []models.ArtistSummary{{ID: 2, Name: "Blue Band"}},
			}},
		}

		m.Update(runes("s"))
		if len(m.results.Items()) != 2 {
			t.Errorf("expected 2 items in search view, got %d", len(m.results.Items()))
		}

		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.Current() != guard.Tracks || len(m.results.Items()) != 1 {
			t.Errorf("expected 1 track in %s, got %d in %s", guard.Tracks, len(m.results.Items()), m.Current())
		}
	})

	t.Run("Error Is Rendered", func(t *testing.T) {
		m, _, coord := newTestModel()
		coord.snap = search.Snapshot{Phase: search.Settled, Err: shared.ErrNetworkFailure}

		m.Update(runes("s"))
		if !strings.Contains(m.View(), "Could not reach the server") {
			t.Error("expected network error to be rendered")
		}
	})
}

func TestLoginView(t *testing.T) {
	t.Run("Successful Login Opens Dashboard", func(t *testing.T) {
		m, _, _ := newTestModel()
		m.Update(runes("l"))

		m.Update(runes("alice"))
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m.Update(runes("right"))
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatal("expected a login command")
		}

		m.Update(cmd())
		if m.Current() != guard.ArtistDashboard {
			t.Errorf("expected %s, got %s", guard.ArtistDashboard, m.Current())
		}
		if !strings.Contains(m.View(), "Artist profile:") {
			t.Error("expected artist profile id on the dashboard")
		}
	})

	t.Run("Rejected Login Stays On Form", func(t *testing.T) {
		m, sess, _ := newTestModel()
		sess.loginErr = shared.ErrAuthRejected
		m.Update(runes("l"))
		m.Update(runes("alice"))
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m.Update(runes("wrong"))

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(cmd())

		if m.Current() != guard.Login {
			t.Errorf("expected to stay on %s, got %s", guard.Login, m.Current())
		}
		if !strings.Contains(m.View(), "Invalid credentials.") {
			t.Error("expected rejection message")
		}
		if m.secret.Value() != "" {
			t.Error("expected secret to be cleared")
		}
	})
}
