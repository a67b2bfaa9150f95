package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"codeshare/internal/models"
	"codeshare/internal/session"
)

// wsProbe covers the union of all server → client message fields.
type wsProbe struct {
	Type         string          `json:"type"`
	Code         string          `json:"code"`
	Language     string          `json:"language"`
	Participants int             `json:"participants"`
	Count        int             `json:"count"`
	UserID       string          `json:"userId"`
	Position     json.RawMessage `json:"position"`
	Message      string          `json:"message"`
}

func newWSServer(t *testing.T) (*httptest.Server, *Handlers, *testCore) {
	t.Helper()
	h, core := newTestHandlers(t)
	server := httptest.NewServer(http.HandlerFunc(h.CollabWS))
	t.Cleanup(server.Close)
	return server, h, core
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write message: %v", err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) wsProbe {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var probe wsProbe
	if err := conn.ReadJSON(&probe); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return probe
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	var probe wsProbe
	if err := conn.ReadJSON(&probe); err == nil {
		t.Fatalf("expected no message, got %#v", probe)
	}
}

func join(t *testing.T, conn *websocket.Conn, sessionID string) wsProbe {
	t.Helper()
	sendMsg(t, conn, models.ClientMessage{Type: models.TypeJoin, SessionID: sessionID})
	init := readNext(t, conn)
	if init.Type != models.TypeInit {
		t.Fatalf("expected init, got %#v", init)
	}
	// Each join is followed by a participants update to every member,
	// including the joiner.
	count := readNext(t, conn)
	if count.Type != models.TypeParticipants {
		t.Fatalf("expected participants after init, got %#v", count)
	}
	return init
}

func TestJoinUnknownSession(t *testing.T) {
	server, _, core := newWSServer(t)
	conn := dialWS(t, server)

	sendMsg(t, conn, models.ClientMessage{Type: models.TypeJoin, SessionID: "missing"})
	probe := readNext(t, conn)
	if probe.Type != models.TypeError || probe.Message != "Session not found" {
		t.Fatalf("expected error message, got %#v", probe)
	}
	if core.store.Count() != 0 {
		t.Fatalf("failed join must not create a session")
	}

	// The connection survives the failed join and can still join properly.
	s := core.store.Create()
	init := join(t, conn, s.ID)
	if init.Participants != 1 {
		t.Fatalf("expected 1 participant, got %d", init.Participants)
	}
}

func TestJoinDeliversCurrentState(t *testing.T) {
	server, _, core := newWSServer(t)
	s := core.store.Create()

	conn := dialWS(t, server)
	init := join(t, conn, s.ID)
	if init.Code != session.DefaultContent || init.Language != "javascript" || init.Participants != 1 {
		t.Fatalf("unexpected init: %#v", init)
	}
}

func TestJoinAfterEditSeesLatestContent(t *testing.T) {
	server, _, core := newWSServer(t)
	s := core.store.Create()

	a := dialWS(t, server)
	join(t, a, s.ID)
	sendMsg(t, a, models.ClientMessage{Type: models.TypeCodeChange, Code: "print(1)"})

	// Wait for the edit to land before the second join.
	waitFor(t, func() bool {
		content, _ := s.Snapshot()
		return content == "print(1)"
	})

	b := dialWS(t, server)
	init := join(t, b, s.ID)
	if init.Code != "print(1)" || init.Participants != 2 {
		t.Fatalf("unexpected init for second joiner: %#v", init)
	}

	// The first member sees the fresh participant count.
	probe := readNext(t, a)
	if probe.Type != models.TypeParticipants || probe.Count != 2 {
		t.Fatalf("expected participants 2, got %#v", probe)
	}
}

func TestCodeChangeFanout(t *testing.T) {
	server, _, core := newWSServer(t)
	s := core.store.Create()

	a := dialWS(t, server)
	join(t, a, s.ID)
	b := dialWS(t, server)
	join(t, b, s.ID)
	readNext(t, a) // participants update from b's join

	sendMsg(t, a, models.ClientMessage{Type: models.TypeCodeChange, Code: "x=1"})

	probe := readNext(t, b)
	if probe.Type != models.TypeCodeUpdate || probe.Code != "x=1" {
		t.Fatalf("expected codeUpdate x=1, got %#v", probe)
	}
	expectSilence(t, a)
}

func TestLanguageChangeFanout(t *testing.T) {
	server, _, core := newWSServer(t)
	s := core.store.Create()

	a := dialWS(t, server)
	join(t, a, s.ID)
	b := dialWS(t, server)
	join(t, b, s.ID)
	readNext(t, a)

	sendMsg(t, a, models.ClientMessage{Type: models.TypeLanguageChange, Language: "python"})

	probe := readNext(t, b)
	if probe.Type != models.TypeLanguageUpdate || probe.Language != "python" {
		t.Fatalf("expected languageUpdate python, got %#v", probe)
	}
	_, language := s.Snapshot()
	if language != "python" {
		t.Fatalf("expected session language updated, got %q", language)
	}
	expectSilence(t, a)
}

func TestCursorPositionPassthrough(t *testing.T) {
	server, _, core := newWSServer(t)
	s := core.store.Create()

	a := dialWS(t, server)
	join(t, a, s.ID)
	b := dialWS(t, server)
	join(t, b, s.ID)
	readNext(t, a)

	position := json.RawMessage(`{"line":3,"ch":14}`)
	sendMsg(t, a, models.ClientMessage{Type: models.TypeCursorPosition, UserID: "u1", Position: position})

	probe := readNext(t, b)
	if probe.Type != models.TypeCursorUpdate || probe.UserID != "u1" {
		t.Fatalf("expected cursorUpdate, got %#v", probe)
	}
	if string(probe.Position) != string(position) {
		t.Fatalf("expected position passed through untouched, got %s", probe.Position)
	}

	content, _ := s.Snapshot()
	if content != session.DefaultContent {
		t.Fatalf("cursor messages must not mutate session state")
	}
}

func TestUnknownTypeIgnored(t *testing.T) {
	server, _, core := newWSServer(t)
	s := core.store.Create()

	conn := dialWS(t, server)
	join(t, conn, s.ID)

	sendMsg(t, conn, map[string]any{"type": "bogus"})
	expectSilence(t, conn)

	// Malformed payloads are dropped too; the connection stays usable.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write raw message: %v", err)
	}
	sendMsg(t, conn, models.ClientMessage{Type: models.TypeLanguageChange, Language: "go"})
	waitFor(t, func() bool {
		_, language := s.Snapshot()
		return language == "go"
	})
}

func TestMessageBeforeJoinDropped(t *testing.T) {
	server, _, core := newWSServer(t)
	s := core.store.Create()

	conn := dialWS(t, server)
	sendMsg(t, conn, models.ClientMessage{Type: models.TypeCodeChange, Code: "sneaky"})
	expectSilence(t, conn)

	content, _ := s.Snapshot()
	if content != session.DefaultContent {
		t.Fatalf("unjoined connection must not mutate sessions")
	}
}

func TestDisconnectNotifiesRemainingMembers(t *testing.T) {
	server, _, core := newWSServer(t)
	s := core.store.Create()

	a := dialWS(t, server)
	join(t, a, s.ID)
	b := dialWS(t, server)
	join(t, b, s.ID)
	readNext(t, a)

	b.Close()

	probe := readNext(t, a)
	if probe.Type != models.TypeParticipants || probe.Count != 1 {
		t.Fatalf("expected participants 1 after disconnect, got %#v", probe)
	}
	waitFor(t, func() bool { return s.MemberCount() == 1 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
