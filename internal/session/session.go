package session

import (
	"sync"
	"time"
)

// DefaultContent seeds every new session so the first participant never
// stares at an empty editor.
const DefaultContent = "// Start typing to share code with your session...\n"

// Session holds the authoritative document state and connected clients for
// one collaborative editing room.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	clients  map[*Client]struct{}
	content  string
	language string
}

func newSession(id, language string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		clients:   make(map[*Client]struct{}),
		content:   DefaultContent,
		language:  language,
	}
}

func (s *Session) join(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

// leave removes the client and reports how many members remain.
func (s *Session) leave(c *Client) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
	return len(s.clients)
}

func (s *Session) MemberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Members returns the current member set as a slice. The slice is a copy;
// callers never observe later joins or leaves through it.
func (s *Session) Members() []*Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		members = append(members, c)
	}
	return members
}

// Snapshot returns the current content and language together, so a joining
// client's init reflects one consistent state.
func (s *Session) Snapshot() (content, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content, s.language
}

func (s *Session) setContent(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = text
}

func (s *Session) setLanguage(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = tag
}
