package models

import (
	"slices"
	"time"
)

type RoomStatus string

const (
	StatusWaiting   RoomStatus = "waiting"
	StatusPlaying   RoomStatus = "playing"
	StatusCompleted RoomStatus = "completed"
)

// Player is one participant of a room. ID survives reconnects, ConnectionID does not.
type Player struct {
	ID             string `json:"id"`
	ConnectionID   string `json:"-"`
	ExternalUserID string `json:"-"`
	Username       string `json:"username"`
	AvatarRef      string `json:"avatarRef,omitempty"`
	IsReady        bool   `json:"isReady"`
	IsAdmin        bool   `json:"isAdmin"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	WrongAnswers   int    `json:"wrongAnswers"`
}

// Round is the live question of a room
type Round struct {
	Destination ClueView `json:"destination"`
	Options     []Option `json:"options"`
}

// Room is one trivia session. Players keep join order; Players[0] at creation is the admin.
type Room struct {
	ID           string     `json:"id"`
	Players      []Player   `json:"players"`
	CurrentRound *Round     `json:"currentRound"`
	Status       RoomStatus `json:"status"`
	StartTime    *time.Time `json:"startTime,omitempty"`
	RoundNumber  int        `json:"roundNumber"`
	MaxRounds    int        `json:"maxRounds,omitempty"`
}

// NewRoom builds a waiting room whose only member is the admin. A maxRounds of zero never completes.
func NewRoom(id string, admin Player, maxRounds int) *Room {
	admin.IsAdmin = true
	admin.IsReady = false
	return &Room{
		ID:        id,
		Players:   []Player{admin},
		Status:    StatusWaiting,
		MaxRounds: maxRounds,
	}
}

// FindPlayer returns the player with the given id, or nil
func (r *Room) FindPlayer(playerID string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayersByConnection returns the ids of every player bound to the connection
func (r *Room) PlayersByConnection(connectionID string) []string {
	var ids []string
	for _, p := range r.Players {
		if p.ConnectionID == connectionID {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// RemovePlayer drops the player and reports whether it was present
func (r *Room) RemovePlayer(playerID string) bool {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// IsEmpty reports whether the room has no players left
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// HasActiveRound reports whether answers are currently accepted
func (r *Room) HasActiveRound() bool {
	return r.Status == StatusPlaying && r.CurrentRound != nil
}

// ConnectionIDs lists the distinct transport connections of the members, in join order
func (r *Room) ConnectionIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ConnectionID != "" && !slices.Contains(ids, p.ConnectionID) {
			ids = append(ids, p.ConnectionID)
		}
	}
	return ids
}

// Snapshot returns a deep copy safe to hand over to the network layer
func (r *Room) Snapshot() Room {
	snap := *r
	snap.Players = append([]Player(nil), r.Players...)
	if r.CurrentRound != nil {
		round := Round{
			Destination: ClueView{
				ID:    r.CurrentRound.Destination.ID,
				Clues: append([]string(nil), r.CurrentRound.Destination.Clues...),
			},
			Options: append([]Option(nil), r.CurrentRound.Options...),
		}
		snap.CurrentRound = &round
	}
	if r.StartTime != nil {
		start := *r.StartTime
		snap.StartTime = &start
	}
	return snap
}
