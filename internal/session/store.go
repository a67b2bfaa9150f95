package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Store and Registry operations that reference a
// session id with no live session behind it.
var ErrNotFound = errors.New("session not found")

// Store owns the mapping from session id to session. All session lookup and
// mutation goes through it; no other component touches the map.
type Store struct {
	defaultLanguage string

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(defaultLanguage string) *Store {
	return &Store{
		defaultLanguage: defaultLanguage,
		sessions:        make(map[string]*Session),
	}
}

// Create allocates a new session with placeholder content, the configured
// default language and no members.
func (st *Store) Create() *Session {
	s := newSession(uuid.NewString(), st.defaultLanguage, time.Now())
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// SetContent overwrites the session's document unconditionally. Last write
// wins; there is no versioning or merge.
func (st *Store) SetContent(id, text string) error {
	s, ok := st.Get(id)
	if !ok {
		return ErrNotFound
	}
	s.setContent(text)
	return nil
}

func (st *Store) SetLanguage(id, tag string) error {
	s, ok := st.Get(id)
	if !ok {
		return ErrNotFound
	}
	s.setLanguage(tag)
	return nil
}

// Delete removes the session. Deleting an absent id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// All returns a snapshot of the current sessions for sweeper iteration.
func (st *Store) All() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	return all
}

func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
