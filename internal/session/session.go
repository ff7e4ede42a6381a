// Package session tracks per-user conversation state: which meaning the next
// free-text message carries, plus the cached results of the last search.
//
// The machine is flat and one-deep. Exactly one state holds per user at a
// time; entering a state replaces whatever was pending, and consuming a text
// message resets the user to idle. States never expire on their own.
package session

import (
	"sync"

	"github.com/kuitang/chat-notes/internal/notes"
)

// State is the pending expectation for a user's next free-text message.
type State int

const (
	Idle State = iota
	AwaitingNote
	AwaitingSearch
	AwaitingCategory // carries the note id being relabeled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingNote:
		return "awaiting_note"
	case AwaitingSearch:
		return "awaiting_search"
	case AwaitingCategory:
		return "awaiting_category"
	default:
		return "unknown"
	}
}

// Pending is the consumed state handed to the dispatcher.
type Pending struct {
	State  State
	NoteID int64 // set only for AwaitingCategory
}

type userSession struct {
	pending Pending

	searchQuery   string
	searchResults []notes.Note
	searchCached  bool
}

// Manager holds the ephemeral per-user sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*userSession
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*userSession)}
}

func (m *Manager) session(userID string) *userSession {
	s, ok := m.sessions[userID]
	if !ok {
		s = &userSession{}
		m.sessions[userID] = s
	}
	return s
}

// ExpectNote arms the user's session so the next text message becomes a note.
func (m *Manager) ExpectNote(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).pending = Pending{State: AwaitingNote}
}

// ExpectSearch arms the session so the next text message runs a search.
func (m *Manager) ExpectSearch(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).pending = Pending{State: AwaitingSearch}
}

// ExpectCategory arms the session so the next text message relabels noteID.
func (m *Manager) ExpectCategory(userID string, noteID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).pending = Pending{State: AwaitingCategory, NoteID: noteID}
}

// ClearPending resets the user to idle without consuming anything. Every
// command and button press calls this before applying its own transition, so
// a stray press is never swallowed as note text.
func (m *Manager) ClearPending(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.pending = Pending{}
	}
}

// ConsumePending returns the pending expectation and resets the user to
// idle. The next text message is therefore consumed exactly once.
func (m *Manager) ConsumePending(userID string) Pending {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return Pending{}
	}
	p := s.pending
	s.pending = Pending{}
	return p
}

// Peek reports the pending expectation without consuming it.
func (m *Manager) Peek(userID string) Pending {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s.pending
	}
	return Pending{}
}

// CacheSearch remembers the last search so next/previous-page presses can
// page over the stale result list without re-running the query.
func (m *Manager) CacheSearch(userID, query string, results []notes.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(userID)
	s.searchQuery = query
	s.searchResults = append([]notes.Note(nil), results...)
	s.searchCached = true
}

// CachedSearch returns the last search, if any. The returned slice is the
// cached copy; callers only read it.
func (m *Manager) CachedSearch(userID string) (query string, results []notes.Note, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, found := m.sessions[userID]
	if !found || !s.searchCached {
		return "", nil, false
	}
	return s.searchQuery, s.searchResults, true
}
