package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/backsoul/globetrotter/pkg/services"
	websocketHub "github.com/backsoul/globetrotter/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/valyala/fasthttp"
)

// SocketHandler speaks the room event protocol over websocket
type SocketHandler struct {
	rooms          *services.RoomService
	hub            *websocketHub.Hub
	validate       *validator.Validate
	upgrader       websocket.FastHTTPUpgrader
	strictNotFound bool
	log            *slog.Logger
}

// NewSocketHandler accepts upgrades from the listed origins; a nil list allows any origin
func NewSocketHandler(rooms *services.RoomService, hub *websocketHub.Hub, origins []string, strictNotFound bool, log *slog.Logger) *SocketHandler {
	h := &SocketHandler{
		rooms:          rooms,
		hub:            hub,
		validate:       validator.New(),
		strictNotFound: strictNotFound,
		log:            log,
	}
	h.upgrader = websocket.FastHTTPUpgrader{
		CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
			origin := string(ctx.Request.Header.Peek("Origin"))
			return origins == nil || origin == "" || lo.Contains(origins, origin)
		},
	}
	return h
}

// HandleWebSocket handles GET /ws
func (h *SocketHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	err := h.upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		client := h.hub.Register(ws)
		h.log.Info("Client connected", "connection_id", client.ID)

		h.hub.ReadPump(client, func(payload []byte) {
			h.handleFrame(client.ID, payload)
		})

		h.hub.Unregister(client)
		h.rooms.Disconnect(client.ID)
		h.log.Info("Client disconnected", "connection_id", client.ID)
	})

	if err != nil {
		h.log.Warn("Error upgrading to WebSocket", "error", err)
	}
}

func (h *SocketHandler) handleFrame(connectionID string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Panic while handling event",
				"connection_id", connectionID,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	var msg models.InboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		h.sendError(connectionID, "Invalid message format")
		return
	}
	h.log.Debug("Event received", "connection_id", connectionID, "event", msg.Type)

	ctx := context.Background()
	switch msg.Type {
	case models.EventJoinRoom:
		var req models.JoinRoomRequest
		if h.decode(connectionID, msg.Data, &req) {
			_, _, err := h.rooms.JoinRoom(connectionID, req)
			h.report(connectionID, msg.Type, err)
		}

	case models.EventPlayerReady:
		var req models.PlayerReadyRequest
		if h.decode(connectionID, msg.Data, &req) {
			h.report(connectionID, msg.Type, h.rooms.PlayerReady(req.RoomID, req.PlayerID))
		}

	case models.EventSubmitAnswer:
		var req models.SubmitAnswerRequest
		if h.decode(connectionID, msg.Data, &req) {
			_, err := h.rooms.SubmitAnswer(ctx, req.RoomID, req.PlayerID, req.AnswerID)
			h.report(connectionID, msg.Type, err)
		}

	case models.EventNextQuestion:
		var req models.NextQuestionRequest
		if h.decode(connectionID, msg.Data, &req) {
			h.report(connectionID, msg.Type, h.rooms.NextQuestion(ctx, req.RoomID))
		}

	case models.EventLeaveRoom:
		var req models.LeaveRoomRequest
		if h.decode(connectionID, msg.Data, &req) {
			h.report(connectionID, msg.Type, h.rooms.LeaveRoom(req.RoomID, req.PlayerID))
		}

	default:
		h.sendError(connectionID, "Unknown event type")
	}
}

// decode reports an invalid payload to the sender and returns false
func (h *SocketHandler) decode(connectionID string, data json.RawMessage, req interface{}) bool {
	if err := json.Unmarshal(data, req); err != nil {
		h.sendError(connectionID, "Invalid request data")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.log.Debug("Validation failed", "connection_id", connectionID, "error", err)
		h.sendError(connectionID, "Invalid request data")
		return false
	}
	return true
}

// report maps a service error onto the client-facing policy
func (h *SocketHandler) report(connectionID, event string, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, models.ErrRoomFull):
		h.sendError(connectionID, "Room is full")
	case errors.Is(err, models.ErrIdentityRequired):
		h.sendError(connectionID, "Authentication required")
	case errors.Is(err, models.ErrRoomCompleted):
		h.sendError(connectionID, "Game is already completed")
	case errors.Is(err, models.ErrRoomNotFound):
		h.notFound(connectionID, event, "Room not found", err)
	case errors.Is(err, models.ErrPlayerNotFound):
		h.notFound(connectionID, event, "Player not found", err)
	case errors.Is(err, models.ErrNoActiveRound):
		h.notFound(connectionID, event, "No active round", err)
	case errors.Is(err, models.ErrNotEnoughDestinations):
		h.log.Warn("Round stalled", "connection_id", connectionID, "event", event, "error", err)
	default:
		h.log.Error("Event failed", "connection_id", connectionID, "event", event, "error", err)
	}
}

func (h *SocketHandler) notFound(connectionID, event, message string, err error) {
	if h.strictNotFound {
		h.sendError(connectionID, message)
		return
	}
	h.log.Debug("Event ignored", "connection_id", connectionID, "event", event, "error", err)
}

func (h *SocketHandler) sendError(connectionID, message string) {
	h.hub.Send(connectionID, models.Message{
		Type: models.EventError,
		Data: models.ErrorPayload{Message: message},
	})
}
