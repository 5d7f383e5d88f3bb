package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/catx/internal/guard"
	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/search"
	"github.com/desertthunder/catx/internal/services"
	"github.com/desertthunder/catx/internal/session"
	"github.com/desertthunder/catx/internal/shared"
)

// Session is the part of [session.Manager] the model drives.
type Session interface {
	Snapshot() session.Snapshot
	Initialize(ctx context.Context) error
	Login(ctx context.Context, identifier, secret string) error
	Logout()
}

// Search is the part of [search.Coordinator] the model drives.
type Search interface {
	SetText(text string)
	Flush()
	Snapshot() search.Snapshot
	Changes() <-chan struct{}
}

const expiredNotice = "Your session expired. Please log in again."

var searchViews = []guard.View{guard.Search, guard.Tracks, guard.Artists, guard.Albums}

var searchTitles = map[guard.View]string{
	guard.Search:  "Search",
	guard.Tracks:  "Tracks",
	guard.Artists: "Artists",
	guard.Albums:  "Albums",
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	session Session
	search  Search
	bridge  *SessionBridge
	logger  *log.Logger

	view        guard.View
	width       int
	height      int
	query       textinput.Model
	identifier  textinput.Model
	secret      textinput.Model
	results     list.Model
	notice      string
	err         error
	busy        bool
	initialized bool
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, sess Session, coordinator Search, bridge *SessionBridge, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	query := textinput.New()
	query.Placeholder = "Search tracks, artists and albums"
	query.Prompt = "🔍 "

	identifier := textinput.New()
	identifier.Placeholder = "email or username"
	identifier.Prompt = "identifier: "

	secret := textinput.New()
	secret.Placeholder = "password"
	secret.Prompt = "secret:     "
	secret.EchoMode = textinput.EchoPassword
	secret.EchoCharacter = '•'

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.SetShowTitle(false)
	results.SetShowHelp(false)
	results.SetFilteringEnabled(false)

	return &Model{
		ctx:        ctx,
		session:    sess,
		search:     coordinator,
		bridge:     bridge,
		logger:     logger,
		view:       guard.Home,
		query:      query,
		identifier: identifier,
		secret:     secret,
		results:    results,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Current returns the view being displayed.
func (m *Model) Current() guard.View { return m.view }

// Init restores the persisted session and starts listening for search and session changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.initialize(), m.waitForSearch(), m.waitForSession(), textinput.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, max(msg.Height-10, 3))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.isSearchView():
			return m.handleSearchKeys(msg)
		case m.view == guard.Login:
			return m.handleLoginKeys(msg)
		default:
			return m.handleMenuKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchChanged:
		m.refreshResults()
		return m, m.waitForSearch()

	case MsgSessionChanged:
		if expired, _ := msg.data.(bool); expired {
			m.notice = expiredNotice
			m.err = nil
			return m, tea.Batch(m.navigate(guard.Login), m.waitForSession())
		}
		return m, tea.Batch(m.navigate(m.view), m.waitForSession())

	case MsgLoginResult:
		m.busy = false
		if err := msg.err(); errors.Is(err, shared.ErrStale) {
			return m, nil
		} else if err != nil {
			m.err = err
			m.secret.SetValue("")
			return m, nil
		}
		m.err = nil
		m.notice = ""
		m.identifier.SetValue("")
		m.secret.SetValue("")
		return m, m.navigate(guard.Dashboard)

	case MsgInitialized:
		m.initialized = true
		if err := msg.err(); err != nil {
			m.notice = "Saved session could not be restored."
		}
		return m, m.navigate(m.view)
	}
	return m, nil
}

// navigate resolves requested against the current session and focuses the inputs of the resulting view.
func (m *Model) navigate(requested guard.View) tea.Cmd {
	decision := guard.Resolve(m.session.Snapshot().Role(), requested)
	if decision.Redirected {
		m.logger.Debug("navigation redirected", "requested", requested, "view", decision.View)
	}
	m.view = decision.View

	m.query.Blur()
	m.identifier.Blur()
	m.secret.Blur()

	switch {
	case m.isSearchView():
		m.refreshResults()
		return m.query.Focus()
	case m.view == guard.Login:
		return m.identifier.Focus()
	}
	return nil
}

func (m *Model) isSearchView() bool {
	for _, v := range searchViews {
		if m.view == v {
			return true
		}
	}
	return false
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		return m, m.navigate(guard.Search)
	case key.Matches(msg, m.keys.login):
		return m, m.navigate(guard.Login)
	case key.Matches(msg, m.keys.dashboard):
		return m, m.navigate(guard.Dashboard)
	case key.Matches(msg, m.keys.logout):
		m.session.Logout()
		m.notice = "Logged out."
		return m, m.navigate(m.view)
	case key.Matches(msg, m.keys.back):
		return m, m.navigate(guard.Home)
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.navigate(guard.Home)
	case key.Matches(msg, m.keys.enter):
		m.search.Flush()
		return m, nil
	case key.Matches(msg, m.keys.tab):
		return m, m.navigate(nextSearchView(m.view))
	case key.Matches(msg, m.keys.up), key.Matches(msg, m.keys.down):
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	before := m.query.Value()
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	if after := m.query.Value(); after != before {
		m.search.SetText(after)
	}
	return m, cmd
}

func nextSearchView(v guard.View) guard.View {
	for i, sv := range searchViews {
		if sv == v {
			return searchViews[(i+1)%len(searchViews)]
		}
	}
	return guard.Search
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.navigate(guard.Home)
	case key.Matches(msg, m.keys.tab):
		return m, m.toggleLoginFocus()
	case key.Matches(msg, m.keys.enter):
		if m.identifier.Focused() {
			return m, m.toggleLoginFocus()
		}
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.err = nil
		return m, m.login(m.identifier.Value(), m.secret.Value())
	}

	var cmd tea.Cmd
	if m.identifier.Focused() {
		m.identifier, cmd = m.identifier.Update(msg)
	} else {
		m.secret, cmd = m.secret.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleLoginFocus() tea.Cmd {
	if m.identifier.Focused() {
		m.identifier.Blur()
		return m.secret.Focus()
	}
	m.secret.Blur()
	return m.identifier.Focus()
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.isSearchView():
		m.query, cmd = m.query.Update(msg)
	case m.view == guard.Login && m.identifier.Focused():
		m.identifier, cmd = m.identifier.Update(msg)
	case m.view == guard.Login:
		m.secret, cmd = m.secret.Update(msg)
	}
	return m, cmd
}

func (m *Model) refreshResults() {
	snap := m.search.Snapshot()
	m.results.SetItems(resultItems(m.view, snap.Results.SearchResults))
}

func (m *Model) initialize() tea.Cmd {
	return func() tea.Msg {
		return initializedMsg(m.session.Initialize(m.ctx))
	}
}

func (m *Model) login(identifier, secret string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg(m.session.Login(m.ctx, identifier, secret))
	}
}

// waitForSearch blocks until the coordinator signals a change.
func (m *Model) waitForSearch() tea.Cmd {
	if m.search == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-m.search.Changes():
			return searchChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

// waitForSession blocks until the session bridge signals a change.
func (m *Model) waitForSession() tea.Cmd {
	if m.bridge == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-m.bridge.Changed():
			return sessionChangedMsg(m.bridge.TakeExpired())
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current view.
func (m *Model) View() string {
	var body string
	switch {
	case m.isSearchView():
		body = m.renderSearch()
	case m.view == guard.Login:
		body = m.renderLogin()
	case m.view == guard.Register:
		body = m.renderRegister()
	case strings.HasPrefix(string(m.view), string(guard.Dashboard)):
		body = m.renderDashboard()
	default:
		body = m.renderHome()
	}

	var notice string
	if m.notice != "" {
		notice = styles.warn.Render(m.notice) + "\n\n"
	}
	return fmt.Sprintf("%s\n%s%s", m.renderStatus(), notice, body)
}

func (m *Model) renderStatus() string {
	snap := m.session.Snapshot()
	switch snap.State {
	case session.Authenticated:
		name := snap.Session.DisplayName
		if name == "" {
			name = "signed in"
		}
		return styles.ok.Render(fmt.Sprintf("● %s (%s)", name, snap.Session.Role)) + "  " + styles.help.Render(string(m.view))
	case session.Validating:
		return styles.warn.Render("● restoring session...")
	default:
		return styles.help.Render("○ anonymous  " + string(m.view))
	}
}

func (m *Model) renderHome() string {
	title := styles.title.Render("catx")
	keys := []key.Binding{m.keys.search, m.keys.dashboard, m.keys.quit}
	if m.session.Snapshot().Role() == models.RoleNone {
		keys = append([]key.Binding{m.keys.login}, keys...)
	} else {
		keys = append([]key.Binding{m.keys.logout}, keys...)
	}
	return fmt.Sprintf("%s\nBrowse the catalog or sign in to open your dashboard.\n\n%s", title, m.help.ShortHelpView(keys))
}

func (m *Model) renderSearch() string {
	snap := m.search.Snapshot()
	title := styles.title.Render(searchTitles[m.view])

	var status string
	switch snap.Phase {
	case search.Pending:
		status = styles.help.Render("typing...")
	case search.InFlight:
		status = styles.help.Render("searching...")
	case search.Settled:
		status = styles.help.Render(fmt.Sprintf("%d results", snap.Results.Total()))
	}
	if snap.Err != nil {
		status = styles.err.Render("Search failed: " + errorMessage(snap.Err))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.tab, m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s", title, m.query.View(), status, m.results.View(), helpView)
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Log in")

	var status string
	switch {
	case m.busy:
		status = styles.help.Render("Signing in...")
	case m.err != nil:
		status = styles.err.Render(errorMessage(m.err))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.tab, m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s", title, m.identifier.View(), m.secret.View(), status, helpView)
}

func (m *Model) renderRegister() string {
	title := styles.title.Render("Register")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.login, m.keys.back})
	return fmt.Sprintf("%s\nCreate an account with the web client, then log in here.\n\n%s", title, helpView)
}

func (m *Model) renderDashboard() string {
	snap := m.session.Snapshot()
	s := snap.Session

	var title string
	switch m.view {
	case guard.ArtistDashboard:
		title = "Artist dashboard"
	case guard.AdminDashboard:
		title = "Admin dashboard"
	default:
		title = "Listener dashboard"
	}

	lines := []string{
		fmt.Sprintf("%s %s", styles.label.Render("Name:"), s.DisplayName),
		fmt.Sprintf("%s %s", styles.label.Render("Role:"), s.Role),
	}
	if s.UserID != nil {
		lines = append(lines, fmt.Sprintf("%s %d", styles.label.Render("User ID:"), *s.UserID))
	}
	if s.ArtistProfileID != nil {
		lines = append(lines, fmt.Sprintf("%s %d", styles.label.Render("Artist profile:"), *s.ArtistProfileID))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.search, m.keys.logout, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(title), strings.Join(lines, "\n"), helpView)
}

// errorMessage maps errors to what the user should see.
func errorMessage(err error) string {
	var apiErr *services.APIError
	switch {
	case errors.Is(err, shared.ErrValidation):
		return "Please enter both an identifier and a secret."
	case errors.As(err, &apiErr) && apiErr.Message != "" && errors.Is(err, shared.ErrAuthRejected):
		return apiErr.Message
	case errors.Is(err, shared.ErrAuthRejected):
		return "Invalid credentials."
	case errors.Is(err, shared.ErrNetworkFailure):
		return "Could not reach the server. Try again."
	case errors.Is(err, shared.ErrStale):
		return ""
	default:
		return "Something went wrong. Try again."
	}
}
