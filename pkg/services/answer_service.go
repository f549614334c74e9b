package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/samber/lo"
)

const (
	PointsPerCorrectAnswer = 10
	FallbackFact           = "Interesting place to visit!"
)

type AnswerService struct {
	content     ContentGateway
	broadcaster Broadcaster
	log         *slog.Logger
}

func NewAnswerService(content ContentGateway, broadcaster Broadcaster, log *slog.Logger) *AnswerService {
	return &AnswerService{content: content, broadcaster: broadcaster, log: log}
}

// Evaluate scores one submission and broadcasts the result to the room.
// Returns models.ErrNoActiveRound or models.ErrPlayerNotFound without touching
// the room. Must be called with the room lock held.
func (s *AnswerService) Evaluate(ctx context.Context, state *RoomState, playerID, answerID string) (models.AnswerResult, error) {
	room := state.room
	if !room.HasActiveRound() {
		return models.AnswerResult{}, fmt.Errorf("%w: room %s", models.ErrNoActiveRound, room.ID)
	}
	player := room.FindPlayer(playerID)
	if player == nil {
		return models.AnswerResult{}, fmt.Errorf("%w: %s in room %s", models.ErrPlayerNotFound, playerID, room.ID)
	}

	destinationID := room.CurrentRound.Destination.ID
	destination, err := s.content.GetByID(ctx, destinationID)
	if err != nil {
		return models.AnswerResult{}, fmt.Errorf("loading destination %s: %w", destinationID, err)
	}

	isCorrect := answerID == destinationID
	if isCorrect {
		player.Score += PointsPerCorrectAnswer
		player.CorrectAnswers++
	} else {
		player.WrongAnswers++
	}

	result := models.AnswerResult{
		PlayerID:    playerID,
		IsCorrect:   isCorrect,
		Destination: destination,
		Fact:        pickFact(destination),
	}

	s.log.Debug("Answer evaluated",
		"room_id", room.ID,
		"player_id", playerID,
		"correct", isCorrect,
		"score", player.Score)

	broadcastToRoom(s.broadcaster, room, models.EventAnswerResult, result)
	return result, nil
}

func pickFact(d models.Destination) string {
	facts := d.Facts()
	if len(facts) == 0 {
		return FallbackFact
	}
	return lo.Sample(facts)
}
