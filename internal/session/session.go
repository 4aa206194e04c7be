// Package session owns the learner's authentication lifecycle.
//
// A Manager moves through Unknown -> Anonymous | Authenticated on Restore, then
// between Anonymous and Authenticated on Login/Signup and Logout. The Session
// record is persisted under the "user" key and nothing else writes that key.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/store"

	"github.com/hashicorp/go-hclog"
)

// ErrInvalidCredentials is returned when a required login/signup field is missing.
var ErrInvalidCredentials = errors.New("invalid credentials")

type State int

const (
	Unknown State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the logged-in user as the client sees it.
type Session struct {
	UserID      string `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
}

// Authenticator turns credentials into a Session. Implementations decide what
// "valid" means; the Manager only owns the state machine and persistence.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Signup(ctx context.Context, name, email, password string) (Session, error)
}

type Manager struct {
	store   store.Store
	auth    Authenticator
	log     hclog.Logger
	state   State
	current Session
}

func NewManager(st store.Store, auth Authenticator, log hclog.Logger) *Manager {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Manager{store: st, auth: auth, log: log, state: Unknown}
}

// Restore loads the persisted session. Absent or malformed data leaves the
// manager Anonymous. Calling it again re-reads the store.
func (m *Manager) Restore() State {
	var s Session
	if m.store.Get(store.KeyUser, &s) && s.UserID != "" {
		m.current = s
		m.state = Authenticated
	} else {
		m.current = Session{}
		m.state = Anonymous
	}
	return m.state
}

func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	if blank(email) || blank(password) {
		return Session{}, ErrInvalidCredentials
	}
	s, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	m.begin(s)
	return s, nil
}

func (m *Manager) Signup(ctx context.Context, name, email, password string) (Session, error) {
	if blank(name) || blank(email) || blank(password) {
		return Session{}, ErrInvalidCredentials
	}
	s, err := m.auth.Signup(ctx, name, email, password)
	if err != nil {
		return Session{}, err
	}
	m.begin(s)
	return s, nil
}

func (m *Manager) begin(s Session) {
	m.current = s
	m.state = Authenticated
	if err := m.store.Set(store.KeyUser, s); err != nil {
		m.log.Warn("session not persisted", "user", s.UserID, "error", err)
	}
}

// Logout always ends Anonymous, whatever the store does.
func (m *Manager) Logout() {
	if err := m.store.Remove(store.KeyUser); err != nil {
		m.log.Warn("session key not cleared", "error", err)
	}
	m.current = Session{}
	m.state = Anonymous
}

func (m *Manager) State() State { return m.state }

func (m *Manager) IsAuthenticated() bool { return m.state == Authenticated }

// IsLoading is true until Restore has run.
func (m *Manager) IsLoading() bool { return m.state == Unknown }

func (m *Manager) Session() (Session, bool) {
	return m.current, m.state == Authenticated
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
