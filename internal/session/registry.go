package session

import "sync"

// Registry tracks which session each connection is bound to. A connection
// belongs to at most one session at a time.
type Registry struct {
	store *Store

	mu    sync.Mutex
	bound map[*Client]string
}

func NewRegistry(store *Store) *Registry {
	return &Registry{store: store, bound: make(map[*Client]string)}
}

// Bind adds the client to the session's member set and records the binding.
// A client already bound elsewhere is unbound first. Returns ErrNotFound when
// the session does not exist; nothing is created or mutated in that case.
func (rg *Registry) Bind(c *Client, sessionID string) error {
	s, ok := rg.store.Get(sessionID)
	if !ok {
		return ErrNotFound
	}

	rg.mu.Lock()
	prev, wasBound := rg.bound[c]
	rg.bound[c] = sessionID
	rg.mu.Unlock()

	if wasBound && prev != sessionID {
		if prevSession, ok := rg.store.Get(prev); ok {
			prevSession.leave(c)
		}
	}
	s.join(c)
	return nil
}

// Unbind removes the client from its session's member set and clears the
// binding. No-op for an unbound client. Returns the session id the client
// left and how many members remain there, so callers can notify and schedule
// cleanup; ok is false when there was no binding.
func (rg *Registry) Unbind(c *Client) (sessionID string, remaining int, ok bool) {
	rg.mu.Lock()
	sessionID, ok = rg.bound[c]
	delete(rg.bound, c)
	rg.mu.Unlock()
	if !ok {
		return "", 0, false
	}
	if s, found := rg.store.Get(sessionID); found {
		remaining = s.leave(c)
	}
	return sessionID, remaining, true
}

// CurrentSession reports the session the client is bound to, if any.
func (rg *Registry) CurrentSession(c *Client) (string, bool) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	id, ok := rg.bound[c]
	return id, ok
}
