package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"codeshare/internal/models"
	"codeshare/internal/session"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// CollabWS upgrades the connection and runs the per-connection message loop.
// The connection starts unbound; a join message binds it to a session.
func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := session.NewClient(conn)
	defer h.disconnect(client)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg models.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warn("dropping malformed message", "error", err.Error())
			continue
		}
		h.dispatch(client, msg)
	}
}

func (h *Handlers) dispatch(client *session.Client, msg models.ClientMessage) {
	if msg.Type == models.TypeJoin {
		h.handleJoin(client, msg.SessionID)
		return
	}

	sessionID, bound := h.registry.CurrentSession(client)
	if !bound {
		h.log.Warn("dropping message from unbound connection", "type", msg.Type)
		return
	}

	switch msg.Type {
	case models.TypeCodeChange:
		if err := h.store.SetContent(sessionID, msg.Code); err != nil {
			h.log.Warn("code change for missing session", "sessionId", sessionID)
			return
		}
		h.broadcaster.Broadcast(sessionID, models.NewCodeUpdate(msg.Code), client)

	case models.TypeLanguageChange:
		if err := h.store.SetLanguage(sessionID, msg.Language); err != nil {
			h.log.Warn("language change for missing session", "sessionId", sessionID)
			return
		}
		h.broadcaster.Broadcast(sessionID, models.NewLanguageUpdate(msg.Language), client)

	case models.TypeCursorPosition:
		// Pure passthrough, no session state touched.
		h.broadcaster.Broadcast(sessionID, models.NewCursorUpdate(msg.UserID, msg.Position), client)

	default:
		h.log.Warn("dropping message with unknown type", "type", msg.Type)
	}
}

func (h *Handlers) handleJoin(client *session.Client, sessionID string) {
	// A rejoin to a different session leaves the old one first, with the
	// usual departure bookkeeping.
	if prev, remaining, wasBound := h.registry.Unbind(client); wasBound {
		h.broadcaster.NotifyParticipants(prev)
		if remaining == 0 {
			h.sweeper.ScheduleEmptyCheck(prev)
		}
	}

	if err := h.registry.Bind(client, sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.broadcaster.SendTo(client, models.NewError("Session not found"))
			return
		}
		h.log.Error("bind failed", "sessionId", sessionID, "error", err.Error())
		return
	}
	h.sweeper.CancelEmptyCheck(sessionID)

	s, ok := h.store.Get(sessionID)
	if !ok {
		// Swept between bind and snapshot; treat as an unknown session.
		h.registry.Unbind(client)
		h.broadcaster.SendTo(client, models.NewError("Session not found"))
		return
	}
	content, language := s.Snapshot()
	h.broadcaster.SendTo(client, models.NewInit(content, language, s.MemberCount()))
	h.broadcaster.NotifyParticipants(sessionID)
}

// disconnect runs when the read loop exits for any reason.
func (h *Handlers) disconnect(client *session.Client) {
	client.Close()
	sessionID, remaining, wasBound := h.registry.Unbind(client)
	if !wasBound {
		return
	}
	h.broadcaster.NotifyParticipants(sessionID)
	if remaining == 0 {
		h.sweeper.ScheduleEmptyCheck(sessionID)
	}
}
