package services

import (
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(capacity int) *RoomRegistry {
	return NewRoomRegistry(capacity, 0, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func TestRoomRegistry_JoinOrCreate_FirstPlayerIsAdmin(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)

	// When a player joins without a room id
	room, outcome, err := registry.JoinOrCreate("", testPlayer("a"), nil)

	// Then a waiting room is created with the player as admin
	req.NoError(err)
	req.Equal(JoinCreated, outcome)
	req.Regexp(regexp.MustCompile(`^room_\d+_\d{1,3}$`), room.ID)
	req.Equal(models.StatusWaiting, room.Status)
	req.Len(room.Players, 1)
	req.True(room.Players[0].IsAdmin)
	req.False(room.Players[0].IsReady)
	req.Equal(1, registry.Count())
}

func TestRoomRegistry_JoinOrCreate_UnknownRoomIDIsHonoured(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)

	room, outcome, err := registry.JoinOrCreate("my-room", testPlayer("a"), nil)

	req.NoError(err)
	req.Equal(JoinCreated, outcome)
	req.Equal("my-room", room.ID)
}

func TestRoomRegistry_JoinOrCreate_SecondPlayerIsNotAdmin(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _, err := registry.JoinOrCreate("", testPlayer("a"), nil)
	req.NoError(err)

	// When a second player asks for admin rights
	b := testPlayer("b")
	b.IsAdmin = true
	b.IsReady = true
	room, outcome, err := registry.JoinOrCreate(room.ID, b, nil)

	// Then the player is appended as a regular, not ready member
	req.NoError(err)
	req.Equal(JoinJoined, outcome)
	req.Len(room.Players, 2)
	req.Equal("b", room.Players[1].ID)
	req.False(room.Players[1].IsAdmin)
	req.False(room.Players[1].IsReady)
	req.True(room.Players[0].IsAdmin)
}

func TestRoomRegistry_JoinOrCreate_RoomFull(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _, _ := registry.JoinOrCreate("", testPlayer("a"), nil)
	_, _, err := registry.JoinOrCreate(room.ID, testPlayer("b"), nil)
	req.NoError(err)

	called := false
	// When a third distinct player joins
	_, outcome, err := registry.JoinOrCreate(room.ID, testPlayer("c"), func(*RoomState, JoinOutcome) { called = true })

	// Then the join is rejected and the room is unchanged
	req.ErrorIs(err, models.ErrRoomFull)
	req.Equal(JoinRoomFull, outcome)
	req.False(called)

	snap, err := registry.GetRoom(room.ID)
	req.NoError(err)
	req.Len(snap.Players, 2)
	req.Nil(snap.FindPlayer("c"))
}

func TestRoomRegistry_JoinOrCreate_ZeroCapacityIsUnlimited(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(0)
	room, _, _ := registry.JoinOrCreate("", testPlayer("a"), nil)

	for _, id := range []string{"b", "c", "d"} {
		_, outcome, err := registry.JoinOrCreate(room.ID, testPlayer(id), nil)
		req.NoError(err)
		req.Equal(JoinJoined, outcome)
	}

	snap, err := registry.GetRoom(room.ID)
	req.NoError(err)
	req.Len(snap.Players, 4)
}

func TestRoomRegistry_JoinOrCreate_ReconnectKeepsSession(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _, _ := registry.JoinOrCreate("", testPlayer("a"), nil)
	_, _, _ = registry.JoinOrCreate(room.ID, testPlayer("b"), nil)

	// Given player b has a score
	mustDo(t, registry, room.ID, func(s *RoomState) {
		p := s.Room().FindPlayer("b")
		p.Score = 30
		p.CorrectAnswers = 3
		p.WrongAnswers = 1
		p.IsReady = true
	})

	// When b joins again from a new connection, even though the room is full
	again := testPlayer("b")
	again.ConnectionID = "conn-b2"
	again.Username = "renamed"
	snap, outcome, err := registry.JoinOrCreate(room.ID, again, nil)

	// Then only the connection changes
	req.NoError(err)
	req.Equal(JoinReconnected, outcome)
	req.Len(snap.Players, 2)
	b := snap.FindPlayer("b")
	req.Equal("conn-b2", b.ConnectionID)
	req.Equal("user b", b.Username)
	req.Equal(30, b.Score)
	req.Equal(3, b.CorrectAnswers)
	req.Equal(1, b.WrongAnswers)
	req.True(b.IsReady)
	req.False(b.IsAdmin)
}

func TestRoomRegistry_JoinOrCreate_SameConnectionIsAlreadyPlaying(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _, _ := registry.JoinOrCreate("", testPlayer("a"), nil)

	var seen JoinOutcome
	snap, outcome, err := registry.JoinOrCreate(room.ID, testPlayer("a"), func(_ *RoomState, o JoinOutcome) { seen = o })

	req.NoError(err)
	req.Equal(JoinAlreadyPlaying, outcome)
	req.Equal(JoinAlreadyPlaying, seen)
	req.Len(snap.Players, 1)
}

func TestRoomRegistry_JoinOrCreate_ReconnectCancelsGraceTimer(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _, _ := registry.JoinOrCreate("", testPlayer("a"), nil)

	fired := make(chan struct{}, 1)
	mustDo(t, registry, room.ID, func(s *RoomState) {
		s.armGrace("a", 50*time.Millisecond, func() { fired <- struct{}{} })
	})

	again := testPlayer("a")
	again.ConnectionID = "conn-a2"
	_, outcome, err := registry.JoinOrCreate(room.ID, again, nil)
	req.NoError(err)
	req.Equal(JoinReconnected, outcome)

	select {
	case <-fired:
		req.Fail("grace timer fired after reconnect")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestRoomRegistry_CreateRoom(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)

	room, err := registry.CreateRoom("lobby", testPlayer("a"))
	req.NoError(err)
	req.Equal("lobby", room.ID)
	req.True(room.Players[0].IsAdmin)

	// Then a live id cannot be created twice
	_, err = registry.CreateRoom("lobby", testPlayer("b"))
	req.ErrorIs(err, models.ErrRoomExists)

	generated, err := registry.CreateRoom("", testPlayer("c"))
	req.NoError(err)
	req.NotEqual("lobby", generated.ID)
	req.Equal(2, registry.Count())
}

func TestRoomRegistry_DeleteRoomIsIdempotent(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _ := registry.CreateRoom("", testPlayer("a"))

	registry.DeleteRoom(room.ID)
	registry.DeleteRoom(room.ID)

	_, err := registry.GetRoom(room.ID)
	req.ErrorIs(err, models.ErrRoomNotFound)
	req.Zero(registry.Count())
}

func TestRoomRegistry_DoDeletesEmptiedRoom(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _ := registry.CreateRoom("", testPlayer("a"))

	// When the last player is removed
	mustDo(t, registry, room.ID, func(s *RoomState) {
		s.Room().RemovePlayer("a")
	})

	// Then the room no longer exists
	_, err := registry.GetRoom(room.ID)
	req.ErrorIs(err, models.ErrRoomNotFound)
	err = registry.Do(room.ID, func(*RoomState) error { return nil })
	req.ErrorIs(err, models.ErrRoomNotFound)

	// And the id can be reused by a fresh room
	again, outcome, err := registry.JoinOrCreate(room.ID, testPlayer("b"), nil)
	req.NoError(err)
	req.Equal(JoinCreated, outcome)
	req.True(again.Players[0].IsAdmin)
}

func TestRoomRegistry_RoomsWithConnection(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	first, _, _ := registry.JoinOrCreate("first", testPlayer("a"), nil)
	_, _, _ = registry.JoinOrCreate("second", testPlayer("b"), nil)
	_, _, _ = registry.JoinOrCreate("third", testPlayer("a"), nil)

	ids := registry.RoomsWithConnection("conn-a")

	req.ElementsMatch([]string{first.ID, "third"}, ids)
	req.Empty(registry.RoomsWithConnection("conn-unknown"))
	req.Len(registry.List(), 3)
}

func TestRoomRegistry_RoomsWithConnectionFollowsMembership(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _, err := registry.JoinOrCreate("", testPlayer("a"), nil)
	req.NoError(err)
	_, _, err = registry.JoinOrCreate(room.ID, testPlayer("b"), nil)
	req.NoError(err)

	// When b comes back on another connection
	moved := testPlayer("b")
	moved.ConnectionID = "conn-b2"
	_, outcome, err := registry.JoinOrCreate(room.ID, moved, nil)
	req.NoError(err)
	req.Equal(JoinReconnected, outcome)

	// Then only the new connection points at the room
	req.Empty(registry.RoomsWithConnection("conn-b"))
	req.Equal([]string{room.ID}, registry.RoomsWithConnection("conn-b2"))

	// When a is removed under the room lock
	mustDo(t, registry, room.ID, func(s *RoomState) {
		s.Room().RemovePlayer("a")
	})
	req.Empty(registry.RoomsWithConnection("conn-a"))

	// When the room is deleted nothing points at it anymore
	registry.DeleteRoom(room.ID)
	req.Empty(registry.RoomsWithConnection("conn-b2"))
	req.Empty(registry.List())
}

func TestRoomRegistry_ReadsDoNotWaitOnRoomLock(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	busy, _, _ := registry.JoinOrCreate("busy", testPlayer("a"), nil)
	_, _, _ = registry.JoinOrCreate("idle", testPlayer("b"), nil)

	// Given a room whose lock is held
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = registry.Do(busy.ID, func(*RoomState) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	// Then lookups across the registry still answer
	done := make(chan struct{})
	go func() {
		defer close(done)
		registry.RoomsWithConnection("conn-b")
		registry.List()
		_, _ = registry.GetRoom(busy.ID)
	}()
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		req.Fail("registry reads blocked by a held room lock")
	}
}

func TestRoomRegistry_NewRoomsCarryMaxRounds(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(2, 3, logs.GetLoggerFromLevel(slog.LevelDebug))

	// When rooms are created through either entry point
	joined, _, err := registry.JoinOrCreate("", testPlayer("a"), func(s *RoomState, outcome JoinOutcome) {
		// Then the limit is already set when the creator is announced
		req.Equal(JoinCreated, outcome)
		req.Equal(3, s.Room().MaxRounds)
	})
	req.NoError(err)
	created, err := registry.CreateRoom("lobby", testPlayer("b"))
	req.NoError(err)

	req.Equal(3, joined.MaxRounds)
	req.Equal(3, created.MaxRounds)
}

func TestRoomRegistry_SnapshotsAreCopies(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(2)
	room, _ := registry.CreateRoom("", testPlayer("a"))

	room.Players[0].Score = 100

	snap, err := registry.GetRoom(room.ID)
	req.NoError(err)
	req.Zero(snap.Players[0].Score)
}
