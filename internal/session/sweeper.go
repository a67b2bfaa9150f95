package session

import (
	"context"
	"sync"
	"time"

	"codeshare/internal/utils"
)

// Sweeper deletes sessions that have been empty past a grace period and
// sessions older than the maximum age. Empty-session checks are deferred
// per-session timers with explicit cancellation, so a session rejoined before
// its timer fires is never deleted by a stale check. Max-age cleanup runs on
// a fixed ticker.
type Sweeper struct {
	store    *Store
	registry *Registry
	log      *utils.Logger

	interval time.Duration
	grace    time.Duration
	maxAge   time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewSweeper(store *Store, registry *Registry, log *utils.Logger, interval, grace, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		registry: registry,
		log:      log,
		interval: interval,
		grace:    grace,
		maxAge:   maxAge,
		timers:   make(map[string]*time.Timer),
	}
}

// ScheduleEmptyCheck arms a deferred deletion for the session. If a timer is
// already pending it is re-armed. At fire time the session is deleted only if
// it still exists and is still empty.
func (sw *Sweeper) ScheduleEmptyCheck(sessionID string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if t, ok := sw.timers[sessionID]; ok {
		t.Stop()
	}
	sw.timers[sessionID] = time.AfterFunc(sw.grace, func() {
		sw.expireIfStillEmpty(sessionID)
	})
}

// CancelEmptyCheck stops a pending deletion, typically because a participant
// joined before the grace period ran out.
func (sw *Sweeper) CancelEmptyCheck(sessionID string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if t, ok := sw.timers[sessionID]; ok {
		t.Stop()
		delete(sw.timers, sessionID)
	}
}

func (sw *Sweeper) expireIfStillEmpty(sessionID string) {
	sw.mu.Lock()
	delete(sw.timers, sessionID)
	sw.mu.Unlock()

	s, ok := sw.store.Get(sessionID)
	if !ok || s.MemberCount() > 0 {
		return
	}
	sw.store.Delete(sessionID)
	sw.log.Info("deleted empty session", "sessionId", sessionID)
}

// Run executes the max-age sweep on a fixed interval until ctx is cancelled.
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sw.stopAllTimers()
			return
		case <-ticker.C:
			sw.sweepExpired(time.Now())
		}
	}
}

// sweepExpired deletes every session older than the max age, regardless of
// membership. Remaining member connections are closed and unbound first so no
// transport is left pointing at a dead session id.
func (sw *Sweeper) sweepExpired(now time.Time) {
	for _, s := range sw.store.All() {
		if now.Sub(s.CreatedAt) < sw.maxAge {
			continue
		}
		members := s.Members()
		for _, c := range members {
			c.Close()
			sw.registry.Unbind(c)
		}
		sw.CancelEmptyCheck(s.ID)
		sw.store.Delete(s.ID)
		sw.log.Info("deleted expired session", "sessionId", s.ID, "members", len(members))
	}
}

func (sw *Sweeper) stopAllTimers() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	for id, t := range sw.timers {
		t.Stop()
		delete(sw.timers, id)
	}
}
