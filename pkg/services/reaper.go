package services

import (
	"errors"
	"log/slog"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
)

// DisconnectReaper holds a disconnected player's seat for a grace window and
// prunes the player once it expires without a reconnect.
type DisconnectReaper struct {
	registry    Registry
	broadcaster Broadcaster
	grace       time.Duration
	log         *slog.Logger
}

func NewDisconnectReaper(registry Registry, broadcaster Broadcaster, grace time.Duration, log *slog.Logger) *DisconnectReaper {
	return &DisconnectReaper{
		registry:    registry,
		broadcaster: broadcaster,
		grace:       grace,
		log:         log,
	}
}

// Arm starts the grace timer of (room, player), bound to the connection that
// just closed. Must be called with the room lock held.
func (r *DisconnectReaper) Arm(state *RoomState, playerID, connectionID string) {
	roomID := state.room.ID
	state.armGrace(playerID, r.grace, func() {
		r.expire(roomID, playerID, connectionID)
	})
	r.log.Debug("Grace timer armed",
		"room_id", roomID,
		"player_id", playerID,
		"connection_id", connectionID,
		"grace", r.grace)
}

func (r *DisconnectReaper) expire(roomID, playerID, connectionID string) {
	defer recoverTimer(r.log, "grace", roomID)
	err := r.registry.Do(roomID, func(state *RoomState) error {
		room := state.room
		player := room.FindPlayer(playerID)
		if player == nil || player.ConnectionID != connectionID {
			// left or reconnected meanwhile
			return nil
		}
		delete(state.grace, playerID)
		room.RemovePlayer(playerID)

		r.log.Info("Player removed after grace period", "room_id", roomID, "player_id", playerID)
		if !room.IsEmpty() {
			broadcastToRoom(r.broadcaster, room, models.EventPlayerLeft, models.PlayerPayload{PlayerID: playerID})
			broadcastToRoom(r.broadcaster, room, models.EventRoomUpdate, room.Snapshot())
		}
		return nil
	})
	if err != nil && !errors.Is(err, models.ErrRoomNotFound) {
		r.log.Error("Grace expiry failed", "room_id", roomID, "player_id", playerID, "error", err)
	}
}
