package models

import "encoding/json"

// Inbound events
const (
	EventJoinRoom     = "join_room"
	EventPlayerReady  = "player_ready"
	EventSubmitAnswer = "submit_answer"
	EventNextQuestion = "next_question"
	EventLeaveRoom    = "leave_room"
)

// Outbound events
const (
	EventJoinedRoom         = "joined_room"
	EventRoomUpdate         = "room_update"
	EventGameRound          = "game_round"
	EventAnswerResult       = "answer_result"
	EventPlayerLeft         = "player_left"
	EventPlayerDisconnected = "player_disconnected"
	EventError              = "error"
)

// Message is the envelope of every websocket frame
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// InboundMessage defers payload decoding until the type is known
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type JoinRoomRequest struct {
	RoomID         string `json:"roomId" validate:"omitempty,max=128"`
	PlayerID       string `json:"playerId" validate:"required,max=128"`
	Username       string `json:"username" validate:"required,max=64"`
	ExternalUserID string `json:"externalUserId" validate:"omitempty,max=128"`
	// IsAdmin is accepted for compatibility; admin is always the room creator.
	IsAdmin   *bool  `json:"isAdmin"`
	AvatarRef string `json:"avatarRef" validate:"omitempty,max=2048"`
}

type PlayerReadyRequest struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	PlayerID string `json:"playerId" validate:"required,max=128"`
}

type SubmitAnswerRequest struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	PlayerID string `json:"playerId" validate:"required,max=128"`
	AnswerID string `json:"answerId" validate:"required,max=128"`
}

type NextQuestionRequest struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

type LeaveRoomRequest struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	PlayerID string `json:"playerId" validate:"required,max=128"`
}

type JoinedRoomPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// AnswerResult is broadcast after every submission; it is never stored on the room
type AnswerResult struct {
	PlayerID    string      `json:"playerId"`
	IsCorrect   bool        `json:"isCorrect"`
	Destination Destination `json:"destination"`
	Fact        string      `json:"fact"`
}

type PlayerPayload struct {
	PlayerID string `json:"playerId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
