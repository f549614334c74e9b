package services

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/samber/lo"
)

type JoinOutcome int

const (
	JoinCreated JoinOutcome = iota
	JoinJoined
	JoinReconnected
	JoinRoomFull
	// JoinAlreadyPlaying is a repeated join from the connection already bound to the player.
	JoinAlreadyPlaying
	// JoinRejected is a join refused before any room was looked up.
	JoinRejected
)

func (o JoinOutcome) String() string {
	switch o {
	case JoinCreated:
		return "created"
	case JoinJoined:
		return "joined"
	case JoinReconnected:
		return "reconnected"
	case JoinRoomFull:
		return "room_full"
	case JoinAlreadyPlaying:
		return "already_playing"
	case JoinRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Registry owns the live rooms. Each room is mutated only inside Do or
// JoinOrCreate, with that room's lock held; rooms never share a lock.
type Registry interface {
	CreateRoom(requestedID string, admin models.Player) (models.Room, error)
	GetRoom(id string) (models.Room, error)
	DeleteRoom(id string)
	JoinOrCreate(roomID string, player models.Player, onJoined func(*RoomState, JoinOutcome)) (models.Room, JoinOutcome, error)
	Do(id string, fn func(*RoomState) error) error
	RoomsWithConnection(connectionID string) []string
	List() []models.Room
	Count() int
	Close()
}

// RoomState is a room plus the timers armed against it
type RoomState struct {
	mu      sync.Mutex
	room    *models.Room
	deleted bool

	advance      *time.Timer
	advanceRound int
	grace        map[string]*time.Timer

	// guarded by the registry lock
	indexed []string
}

func newRoomState(room *models.Room) *RoomState {
	return &RoomState{room: room, grace: make(map[string]*time.Timer)}
}

// Room is only valid while the state's lock is held
func (s *RoomState) Room() *models.Room {
	return s.room
}

// scheduleAdvance arms one auto-advance per round. A second request for the
// same round keeps the first deadline.
func (s *RoomState) scheduleAdvance(delay time.Duration, fire func(round int)) bool {
	if s.advance != nil && s.advanceRound == s.room.RoundNumber {
		return false
	}
	s.stopAdvance()
	round := s.room.RoundNumber
	s.advanceRound = round
	s.advance = time.AfterFunc(delay, func() { fire(round) })
	return true
}

func (s *RoomState) stopAdvance() {
	if s.advance != nil {
		s.advance.Stop()
		s.advance = nil
	}
}

func (s *RoomState) armGrace(playerID string, delay time.Duration, fire func()) {
	s.cancelGrace(playerID)
	s.grace[playerID] = time.AfterFunc(delay, fire)
}

func (s *RoomState) cancelGrace(playerID string) bool {
	t, ok := s.grace[playerID]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.grace, playerID)
	return true
}

func (s *RoomState) stopTimers() {
	s.stopAdvance()
	for id := range s.grace {
		s.cancelGrace(id)
	}
}

var _ Registry = (*RoomRegistry)(nil)

// RoomRegistry guards the id -> room map with its own lock. That lock is never
// held while a room lock is being acquired, so it may be taken from inside one.
//
// Alongside the map it keeps the last published snapshot of every room and a
// connection id -> room ids index. Both are refreshed whenever a room lock is
// released after a mutation, and are read without touching any room lock.
type RoomRegistry struct {
	mu        sync.RWMutex
	rooms     map[string]*RoomState
	snapshots map[string]models.Room
	conns     map[string]map[string]struct{}
	capacity  int
	maxRounds int
	log       *slog.Logger
	now       func() time.Time
}

// NewRoomRegistry builds an empty registry. A capacity of zero or less disables
// the seat limit; maxRounds is stamped on every room it creates, zero meaning unbounded.
func NewRoomRegistry(capacity, maxRounds int, log *slog.Logger) *RoomRegistry {
	return &RoomRegistry{
		rooms:     make(map[string]*RoomState),
		snapshots: make(map[string]models.Room),
		conns:     make(map[string]map[string]struct{}),
		capacity:  capacity,
		maxRounds: maxRounds,
		log:       log,
		now:       time.Now,
	}
}

func (r *RoomRegistry) generateID() string {
	for {
		id := fmt.Sprintf("room_%d_%d", r.now().UnixMilli(), rand.IntN(1000))
		if _, taken := r.rooms[id]; !taken {
			return id
		}
	}
}

func (r *RoomRegistry) lookup(id string) *RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[id]
}

// CreateRoom fails with models.ErrRoomExists when requestedID is live
func (r *RoomRegistry) CreateRoom(requestedID string, admin models.Player) (models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[requestedID]; ok && requestedID != "" {
		return models.Room{}, fmt.Errorf("%w: %s", models.ErrRoomExists, requestedID)
	}
	id := requestedID
	if id == "" {
		id = r.generateID()
	}
	state := r.add(id, admin)
	return state.room.Snapshot(), nil
}

// add must be called with the registry lock held
func (r *RoomRegistry) add(id string, admin models.Player) *RoomState {
	state := newRoomState(models.NewRoom(id, admin, r.maxRounds))
	r.rooms[id] = state
	r.snapshots[id] = state.room.Snapshot()
	r.reindex(id, state, state.room.ConnectionIDs())
	return state
}

// GetRoom reads the last published snapshot and never waits on the room lock
func (r *RoomRegistry) GetRoom(id string) (models.Room, error) {
	r.mu.RLock()
	snap, ok := r.snapshots[id]
	r.mu.RUnlock()
	if !ok {
		return models.Room{}, fmt.Errorf("%w: %s", models.ErrRoomNotFound, id)
	}
	return snap.Snapshot(), nil
}

// DeleteRoom is idempotent
func (r *RoomRegistry) DeleteRoom(id string) {
	r.mu.Lock()
	state, ok := r.rooms[id]
	if ok {
		r.forget(id, state)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	state.deleted = true
	state.stopTimers()
	r.log.Info("Room deleted", "room_id", id)
}

// remove must be called with the state's lock held
func (r *RoomRegistry) remove(state *RoomState) {
	r.mu.Lock()
	if r.rooms[state.room.ID] == state {
		r.forget(state.room.ID, state)
	}
	r.mu.Unlock()
	state.deleted = true
	state.stopTimers()
	r.log.Info("Room deleted", "room_id", state.room.ID, "reason", "empty")
}

// Do runs fn against the live room with its lock held. A room left without
// players once fn returns is deleted.
func (r *RoomRegistry) Do(id string, fn func(*RoomState) error) error {
	state := r.lookup(id)
	if state == nil {
		return fmt.Errorf("%w: %s", models.ErrRoomNotFound, id)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.deleted {
		return fmt.Errorf("%w: %s", models.ErrRoomNotFound, id)
	}

	err := fn(state)
	if state.room.IsEmpty() {
		r.remove(state)
	} else {
		r.publish(state)
	}
	return err
}

// publish must be called with the state's lock held
func (r *RoomRegistry) publish(state *RoomState) {
	snap := state.room.Snapshot()
	conns := snap.ConnectionIDs()
	r.mu.Lock()
	defer r.mu.Unlock()
	if state.deleted || r.rooms[snap.ID] != state {
		return
	}
	r.snapshots[snap.ID] = snap
	r.reindex(snap.ID, state, conns)
}

// forget must be called with the registry lock held
func (r *RoomRegistry) forget(id string, state *RoomState) {
	delete(r.rooms, id)
	delete(r.snapshots, id)
	r.reindex(id, state, nil)
}

// reindex replaces the connections recorded for the room. Registry lock held.
func (r *RoomRegistry) reindex(roomID string, state *RoomState, conns []string) {
	for _, c := range state.indexed {
		rooms := r.conns[c]
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.conns, c)
		}
	}
	for _, c := range conns {
		if r.conns[c] == nil {
			r.conns[c] = make(map[string]struct{})
		}
		r.conns[c][roomID] = struct{}{}
	}
	state.indexed = conns
}

func (r *RoomRegistry) getOrCreate(roomID string, player models.Player) (*RoomState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if roomID != "" {
		if state, ok := r.rooms[roomID]; ok {
			return state, false
		}
	} else {
		roomID = r.generateID()
	}
	return r.add(roomID, player), true
}

// JoinOrCreate creates the room when roomID is empty or unknown, reconnects a
// known player id, or appends a new player while capacity allows. onJoined runs
// with the room lock held, after the mutation, for every successful outcome.
func (r *RoomRegistry) JoinOrCreate(roomID string, player models.Player, onJoined func(*RoomState, JoinOutcome)) (models.Room, JoinOutcome, error) {
	for {
		state, created := r.getOrCreate(roomID, player)

		state.mu.Lock()
		if state.deleted {
			// Lost a race with the room's deletion; the next lookup creates it afresh.
			state.mu.Unlock()
			continue
		}

		outcome, err := JoinCreated, error(nil)
		if !created {
			outcome, err = r.join(state, player)
		}
		if err == nil && onJoined != nil {
			onJoined(state, outcome)
		}
		snap := state.room.Snapshot()
		r.publish(state)
		state.mu.Unlock()
		return snap, outcome, err
	}
}

func (r *RoomRegistry) join(state *RoomState, player models.Player) (JoinOutcome, error) {
	room := state.room
	if existing := room.FindPlayer(player.ID); existing != nil {
		state.cancelGrace(player.ID)
		if existing.ConnectionID == player.ConnectionID {
			return JoinAlreadyPlaying, nil
		}
		existing.ConnectionID = player.ConnectionID
		return JoinReconnected, nil
	}

	if r.capacity > 0 && len(room.Players) >= r.capacity {
		return JoinRoomFull, fmt.Errorf("%w: %s", models.ErrRoomFull, room.ID)
	}

	player.IsAdmin = false
	player.IsReady = false
	player.Score, player.CorrectAnswers, player.WrongAnswers = 0, 0, 0
	room.Players = append(room.Players, player)
	return JoinJoined, nil
}

// RoomsWithConnection lists the rooms in which a player is bound to
// connectionID, from the index. Callers re-check membership under the room lock.
func (r *RoomRegistry) RoomsWithConnection(connectionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.conns[connectionID])
}

// List returns the published snapshot of every live room
func (r *RoomRegistry) List() []models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.MapToSlice(r.snapshots, func(_ string, room models.Room) models.Room {
		return room.Snapshot()
	})
}

func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Close stops every timer and forgets all rooms
func (r *RoomRegistry) Close() {
	for _, state := range r.states() {
		r.DeleteRoom(state.room.ID)
	}
}

func (r *RoomRegistry) states() []*RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.rooms)
}
