package session

import (
	"codeshare/internal/models"
	"codeshare/internal/utils"
)

// Broadcaster fans messages out to session members. Membership is resolved
// through the Store at call time, so joins and leaves between broadcasts are
// reflected.
type Broadcaster struct {
	store *Store
	log   *utils.Logger
}

func NewBroadcaster(store *Store, log *utils.Logger) *Broadcaster {
	return &Broadcaster{store: store, log: log}
}

// SendTo delivers msg to a single client. Delivery failure is logged and
// swallowed; the connection's own read loop handles teardown.
func (b *Broadcaster) SendTo(c *Client, msg any) {
	if err := c.Send(msg); err != nil {
		b.log.Warn("dropping undeliverable message", "error", err.Error())
	}
}

// Broadcast delivers msg to every member of the session except exclude (nil
// means no exclusion). Each delivery is independent; one dead transport never
// blocks the rest.
func (b *Broadcaster) Broadcast(sessionID string, msg any, exclude *Client) {
	s, ok := b.store.Get(sessionID)
	if !ok {
		return
	}
	for _, c := range s.Members() {
		if c == exclude {
			continue
		}
		b.SendTo(c, msg)
	}
}

// NotifyParticipants broadcasts the current member count to every member of
// the session, including whoever triggered the change.
func (b *Broadcaster) NotifyParticipants(sessionID string) {
	s, ok := b.store.Get(sessionID)
	if !ok {
		return
	}
	b.Broadcast(sessionID, models.NewParticipants(s.MemberCount()), nil)
}
