package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/samber/lo"
)

// RoundService prepares rounds from the content catalogue
type RoundService struct {
	content     ContentGateway
	broadcaster Broadcaster
	optionCount int
	log         *slog.Logger
	now         func() time.Time
}

func NewRoundService(content ContentGateway, broadcaster Broadcaster, optionCount int, log *slog.Logger) *RoundService {
	return &RoundService{
		content:     content,
		broadcaster: broadcaster,
		optionCount: optionCount,
		log:         log,
		now:         time.Now,
	}
}

// PrepareRound installs a new round on the room and broadcasts it.
// The room is left untouched when the catalogue cannot supply a full batch.
// Must be called with the room lock held.
func (s *RoundService) PrepareRound(ctx context.Context, state *RoomState) error {
	room := state.room

	batch, err := s.content.SampleDistinct(ctx, s.optionCount)
	if err != nil {
		return fmt.Errorf("preparing round for room %s: %w", room.ID, err)
	}

	correct := s.pickCorrect(room, batch)
	options := lo.Shuffle(lo.Map(batch, func(d models.Destination, _ int) models.Option {
		return d.Option()
	}))

	now := s.now()
	room.CurrentRound = &models.Round{
		Destination: correct.ClueView(),
		Options:     options,
	}
	room.Status = models.StatusPlaying
	room.StartTime = &now
	room.RoundNumber++
	state.stopAdvance()

	s.log.Info("Round prepared",
		"room_id", room.ID,
		"round", room.RoundNumber,
		"destination_id", correct.ID)

	snap := room.Snapshot()
	broadcastToRoom(s.broadcaster, room, models.EventGameRound, snap.CurrentRound)
	broadcastToRoom(s.broadcaster, room, models.EventRoomUpdate, snap)
	return nil
}

// pickCorrect avoids repeating the previous round's answer when the batch allows it
func (s *RoundService) pickCorrect(room *models.Room, batch []models.Destination) models.Destination {
	candidates := batch
	if room.CurrentRound != nil {
		previous := room.CurrentRound.Destination.ID
		others := lo.Reject(batch, func(d models.Destination, _ int) bool { return d.ID == previous })
		if len(others) > 0 {
			candidates = others
		}
	}
	return lo.Sample(candidates)
}
