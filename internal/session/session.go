package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/debugmate-ai/debugmate/internal/assistant"
)

var (
	// ErrWrongPassword is returned on a failed login. There is no lockout;
	// the caller may retry indefinitely.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrNotFound is returned when a session ID is unknown.
	ErrNotFound = errors.New("session not found")
)

// Entry is one analysis run recorded in the session history.
type Entry struct {
	Timestamp    time.Time
	Summary      string
	Snippet      string
	ErrorMessage string
	Issues       []string
	Debug        assistant.DebugResult
}

// Session holds per-user state for the lifetime of the process. Nothing in
// here is ever persisted.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	apiKey     string
	theme      string
	history    []Entry
	lastReport string
	limit      int
}

// SetAPIKey stores the session-scoped LLM credential.
func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// APIKey returns the session-scoped LLM credential, if any.
func (s *Session) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// SetTheme switches the UI theme.
func (s *Session) SetTheme(theme string) error {
	switch theme {
	case "light", "dark":
	default:
		return fmt.Errorf("unknown theme %q", theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	return nil
}

// Theme returns the active theme.
func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Record appends one run to the history and remembers its report for
// download. The oldest entries are dropped beyond the configured limit.
func (s *Session) Record(entry Entry, generatedReport string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entry)
	if s.limit > 0 && len(s.history) > s.limit {
		s.history = s.history[len(s.history)-s.limit:]
	}
	s.lastReport = generatedReport
}

// History returns recorded entries, newest first.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.history))
	for i, e := range s.history {
		out[len(s.history)-1-i] = e
	}
	return out
}

// LastReport returns the most recent report, if a run has completed.
func (s *Session) LastReport() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport, s.lastReport != ""
}

// Manager owns all live sessions and the shared-password gate.
type Manager struct {
	mu            sync.Mutex
	password      string
	historyLimit  int
	summaryLength int
	sessions      map[string]*Session
}

// NewManager creates a session manager guarding access with the given
// shared password.
func NewManager(password string, historyLimit, summaryLength int) *Manager {
	return &Manager{
		password:      password,
		historyLimit:  historyLimit,
		summaryLength: summaryLength,
		sessions:      make(map[string]*Session),
	}
}

// Login verifies the shared password and creates a fresh session.
func (m *Manager) Login(password string) (*Session, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) != 1 {
		return nil, ErrWrongPassword
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		theme:     "light",
		limit:     m.historyLimit,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s, nil
}

// Get looks up a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Summarize produces the short history label for an explanation: the first
// summaryLength characters with newlines flattened. The cut counts runes so
// a multi-byte character at the boundary is never split.
func (m *Manager) Summarize(explanation string) string {
	flat := strings.ReplaceAll(explanation, "\n", " ")
	if runes := []rune(flat); len(runes) > m.summaryLength {
		flat = string(runes[:m.summaryLength])
	}
	return flat
}
