package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
)

type RoomConfig struct {
	AutoAdvanceDelay      time.Duration
	RequireExternalUserID bool
}

// RoomService drives the room state machine. It is the only writer of a room's status.
type RoomService struct {
	registry    Registry
	rounds      *RoundService
	answers     *AnswerService
	reaper      *DisconnectReaper
	broadcaster Broadcaster
	cfg         RoomConfig
	log         *slog.Logger

	// ctx bounds the work started by timers
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRoomService(
	registry Registry,
	rounds *RoundService,
	answers *AnswerService,
	reaper *DisconnectReaper,
	broadcaster Broadcaster,
	cfg RoomConfig,
	log *slog.Logger,
) *RoomService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RoomService{
		registry:    registry,
		rounds:      rounds,
		answers:     answers,
		reaper:      reaper,
		broadcaster: broadcaster,
		cfg:         cfg,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// JoinRoom creates, joins or reconnects. The room snapshot goes to every member,
// then joined_room to the caller. A join refused before reaching the registry
// reports JoinRejected.
func (s *RoomService) JoinRoom(connectionID string, req models.JoinRoomRequest) (models.Room, JoinOutcome, error) {
	if s.cfg.RequireExternalUserID && req.ExternalUserID == "" {
		s.log.Warn("Join rejected",
			"room_id", req.RoomID,
			"player_id", req.PlayerID,
			"outcome", JoinRejected.String(),
			"error", models.ErrIdentityRequired)
		return models.Room{}, JoinRejected, models.ErrIdentityRequired
	}

	player := models.Player{
		ID:             req.PlayerID,
		ConnectionID:   connectionID,
		ExternalUserID: req.ExternalUserID,
		Username:       req.Username,
		AvatarRef:      req.AvatarRef,
	}

	room, outcome, err := s.registry.JoinOrCreate(req.RoomID, player, func(state *RoomState, _ JoinOutcome) {
		broadcastToRoom(s.broadcaster, state.room, models.EventRoomUpdate, state.room.Snapshot())
		s.broadcaster.Send(connectionID, models.Message{
			Type: models.EventJoinedRoom,
			Data: models.JoinedRoomPayload{RoomID: state.room.ID, PlayerID: req.PlayerID},
		})
	})
	if err != nil {
		s.log.Warn("Join rejected",
			"room_id", req.RoomID,
			"player_id", req.PlayerID,
			"outcome", outcome.String(),
			"error", err)
		return room, outcome, err
	}

	s.log.Info("Player joined",
		"room_id", room.ID,
		"player_id", req.PlayerID,
		"connection_id", connectionID,
		"outcome", outcome.String(),
		"players", len(room.Players))
	return room, outcome, nil
}

func (s *RoomService) PlayerReady(roomID, playerID string) error {
	return s.registry.Do(roomID, func(state *RoomState) error {
		player := state.room.FindPlayer(playerID)
		if player == nil {
			return fmt.Errorf("%w: %s in room %s", models.ErrPlayerNotFound, playerID, roomID)
		}
		player.IsReady = true
		broadcastToRoom(s.broadcaster, state.room, models.EventRoomUpdate, state.room.Snapshot())
		return nil
	})
}

// SubmitAnswer evaluates the answer and, in multiplayer rooms, schedules the next round
func (s *RoomService) SubmitAnswer(ctx context.Context, roomID, playerID, answerID string) (models.AnswerResult, error) {
	var result models.AnswerResult
	err := s.registry.Do(roomID, func(state *RoomState) error {
		var err error
		result, err = s.answers.Evaluate(ctx, state, playerID, answerID)
		if err != nil {
			return err
		}
		if len(state.room.Players) > 1 {
			if state.scheduleAdvance(s.cfg.AutoAdvanceDelay, func(round int) { s.autoAdvance(roomID, round) }) {
				s.log.Debug("Auto-advance scheduled", "room_id", roomID, "round", state.room.RoundNumber)
			}
		}
		return nil
	})
	return result, err
}

func (s *RoomService) autoAdvance(roomID string, round int) {
	defer recoverTimer(s.log, "auto_advance", roomID)
	err := s.registry.Do(roomID, func(state *RoomState) error {
		room := state.room
		if state.advanceRound == round {
			state.advance = nil
		}
		if room.RoundNumber != round || room.Status != models.StatusPlaying || len(room.Players) <= 1 {
			return nil
		}
		return s.advance(s.ctx, state)
	})
	if err != nil {
		s.log.Warn("Auto-advance failed", "room_id", roomID, "round", round, "error", err)
	}
}

// NextQuestion prepares a new round; any member may call it
func (s *RoomService) NextQuestion(ctx context.Context, roomID string) error {
	return s.registry.Do(roomID, func(state *RoomState) error {
		if state.room.Status == models.StatusCompleted {
			return fmt.Errorf("%w: %s", models.ErrRoomCompleted, roomID)
		}
		return s.advance(ctx, state)
	})
}

func (s *RoomService) advance(ctx context.Context, state *RoomState) error {
	room := state.room
	if room.MaxRounds > 0 && room.RoundNumber >= room.MaxRounds {
		room.Status = models.StatusCompleted
		state.stopAdvance()
		s.log.Info("Room completed", "room_id", room.ID, "rounds", room.RoundNumber)
		broadcastToRoom(s.broadcaster, room, models.EventRoomUpdate, room.Snapshot())
		return nil
	}
	return s.rounds.PrepareRound(ctx, state)
}

func (s *RoomService) LeaveRoom(roomID, playerID string) error {
	return s.registry.Do(roomID, func(state *RoomState) error {
		room := state.room
		state.cancelGrace(playerID)
		if !room.RemovePlayer(playerID) {
			return fmt.Errorf("%w: %s in room %s", models.ErrPlayerNotFound, playerID, roomID)
		}

		s.log.Info("Player left", "room_id", roomID, "player_id", playerID, "players", len(room.Players))
		if !room.IsEmpty() {
			broadcastToRoom(s.broadcaster, room, models.EventPlayerLeft, models.PlayerPayload{PlayerID: playerID})
			broadcastToRoom(s.broadcaster, room, models.EventRoomUpdate, room.Snapshot())
		}
		return nil
	})
}

// Disconnect keeps every seat bound to the closed connection and arms their grace timers
func (s *RoomService) Disconnect(connectionID string) {
	for _, roomID := range s.registry.RoomsWithConnection(connectionID) {
		err := s.registry.Do(roomID, func(state *RoomState) error {
			for _, playerID := range state.room.PlayersByConnection(connectionID) {
				s.log.Info("Player disconnected", "room_id", roomID, "player_id", playerID, "connection_id", connectionID)
				broadcastToRoom(s.broadcaster, state.room, models.EventPlayerDisconnected, models.PlayerPayload{PlayerID: playerID})
				s.reaper.Arm(state, playerID, connectionID)
			}
			return nil
		})
		if err != nil {
			s.log.Debug("Disconnect skipped", "room_id", roomID, "connection_id", connectionID, "error", err)
		}
	}
}

func (s *RoomService) GetRoom(roomID string) (models.Room, error) {
	return s.registry.GetRoom(roomID)
}

func (s *RoomService) ListRooms() []models.Room {
	return s.registry.List()
}

func (s *RoomService) RoomCount() int {
	return s.registry.Count()
}

// Shutdown stops pending timers and forgets every room
func (s *RoomService) Shutdown() {
	s.cancel()
	s.registry.Close()
}

// recoverTimer keeps a panic on a timer goroutine from taking the process down
func recoverTimer(log *slog.Logger, timer, roomID string) {
	if r := recover(); r != nil {
		log.Error("Panic in room timer",
			"timer", timer,
			"room_id", roomID,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}
