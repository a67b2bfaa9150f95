package models

import "encoding/json"

// Inbound message types.
const (
	TypeJoin           = "join"
	TypeCodeChange     = "codeChange"
	TypeLanguageChange = "languageChange"
	TypeCursorPosition = "cursorPosition"
)

// Outbound message types.
const (
	TypeInit           = "init"
	TypeCodeUpdate     = "codeUpdate"
	TypeLanguageUpdate = "languageUpdate"
	TypeParticipants   = "participants"
	TypeCursorUpdate   = "cursorUpdate"
	TypeError          = "error"
)

// ClientMessage is the envelope for every client → server message. Only the
// fields relevant to Type are expected to be set; Position is carried opaquely
// so clients are free to evolve its shape.
type ClientMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Code      string          `json:"code,omitempty"`
	Language  string          `json:"language,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Position  json.RawMessage `json:"position,omitempty"`
}

/*** Server → client variants ***/

type InitMessage struct {
	Type         string `json:"type"`
	Code         string `json:"code"`
	Language     string `json:"language"`
	Participants int    `json:"participants"`
}

func NewInit(code, language string, participants int) InitMessage {
	return InitMessage{Type: TypeInit, Code: code, Language: language, Participants: participants}
}

type CodeUpdateMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

func NewCodeUpdate(code string) CodeUpdateMessage {
	return CodeUpdateMessage{Type: TypeCodeUpdate, Code: code}
}

type LanguageUpdateMessage struct {
	Type     string `json:"type"`
	Language string `json:"language"`
}

func NewLanguageUpdate(language string) LanguageUpdateMessage {
	return LanguageUpdateMessage{Type: TypeLanguageUpdate, Language: language}
}

type ParticipantsMessage struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func NewParticipants(count int) ParticipantsMessage {
	return ParticipantsMessage{Type: TypeParticipants, Count: count}
}

type CursorUpdateMessage struct {
	Type     string          `json:"type"`
	UserID   string          `json:"userId"`
	Position json.RawMessage `json:"position"`
}

func NewCursorUpdate(userID string, position json.RawMessage) CursorUpdateMessage {
	return CursorUpdateMessage{Type: TypeCursorUpdate, UserID: userID, Position: position}
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}

/*** REST response shapes ***/

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type SessionInfoResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Language     string `json:"language"`
	Participants int    `json:"participants"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
