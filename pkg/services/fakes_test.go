package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	connectionID string
	msg          models.Message
}

// recordingBroadcaster keeps every frame it is asked to deliver
type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (b *recordingBroadcaster) Send(connectionID string, msg models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{connectionID: connectionID, msg: msg})
}

func (b *recordingBroadcaster) Broadcast(connectionIDs []string, msg models.Message) {
	for _, id := range connectionIDs {
		b.Send(id, msg)
	}
}

// received lists the messages of a type delivered to one connection, in order
func (b *recordingBroadcaster) received(connectionID, eventType string) []models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Message
	for _, s := range b.sent {
		if s.connectionID == connectionID && s.msg.Type == eventType {
			out = append(out, s.msg)
		}
	}
	return out
}

// types lists the event types delivered to one connection, in order
func (b *recordingBroadcaster) types(connectionID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, s := range b.sent {
		if s.connectionID == connectionID {
			out = append(out, s.msg.Type)
		}
	}
	return out
}

func (b *recordingBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = nil
}

// memoryContent is an in-memory catalogue
type memoryContent struct {
	destinations []models.Destination
}

func newMemoryContent(n int) *memoryContent {
	return &memoryContent{destinations: testDestinations(n)}
}

func (c *memoryContent) SampleDistinct(_ context.Context, k int) ([]models.Destination, error) {
	if len(c.destinations) < k {
		return nil, fmt.Errorf("%w: wanted %d, have %d", models.ErrNotEnoughDestinations, k, len(c.destinations))
	}
	return lo.Samples(c.destinations, k), nil
}

func (c *memoryContent) GetByID(_ context.Context, id string) (models.Destination, error) {
	d, ok := lo.Find(c.destinations, func(d models.Destination) bool { return d.ID == id })
	if !ok {
		return models.Destination{}, fmt.Errorf("%w: %s", models.ErrDestinationNotFound, id)
	}
	return d, nil
}

// blockingContent stalls every sample until release is closed
type blockingContent struct {
	*memoryContent
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingContent(n int) *blockingContent {
	return &blockingContent{
		memoryContent: newMemoryContent(n),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (c *blockingContent) SampleDistinct(ctx context.Context, k int) ([]models.Destination, error) {
	c.once.Do(func() { close(c.entered) })
	<-c.release
	return c.memoryContent.SampleDistinct(ctx, k)
}

// panickingContent panics on every sample past the first `after`
type panickingContent struct {
	*memoryContent
	after int32
	calls atomic.Int32
}

func (c *panickingContent) SampleDistinct(ctx context.Context, k int) ([]models.Destination, error) {
	if c.calls.Add(1) > c.after {
		panic("catalogue exploded")
	}
	return c.memoryContent.SampleDistinct(ctx, k)
}

// panickingBroadcaster panics when asked to fan out one event type
type panickingBroadcaster struct {
	*recordingBroadcaster
	eventType string
}

func (b *panickingBroadcaster) Broadcast(connectionIDs []string, msg models.Message) {
	if msg.Type == b.eventType {
		panic("broadcast exploded")
	}
	b.recordingBroadcaster.Broadcast(connectionIDs, msg)
}

func testDestinations(n int) []models.Destination {
	return lo.Times(n, func(i int) models.Destination {
		return models.Destination{
			ID:       fmt.Sprintf("dest-%d", i),
			City:     fmt.Sprintf("City %d", i),
			Country:  fmt.Sprintf("Country %d", i),
			Clues:    []string{fmt.Sprintf("clue %d", i)},
			FunFacts: []string{fmt.Sprintf("fun fact %d", i)},
			Trivia:   []string{fmt.Sprintf("trivia %d", i)},
		}
	})
}

func testPlayer(id string) models.Player {
	return models.Player{ID: id, ConnectionID: "conn-" + id, Username: "user " + id}
}

// mustDo runs fn on a live room and fails the test otherwise
func mustDo(t *testing.T, registry Registry, roomID string, fn func(*RoomState)) {
	t.Helper()
	require.NoError(t, registry.Do(roomID, func(s *RoomState) error { fn(s); return nil }))
}
