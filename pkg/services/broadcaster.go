package services

import "github.com/backsoul/globetrotter/pkg/models"

// Broadcaster delivers outbound events to transport connections.
// Implementations must not block: they are called with a room's lock held.
type Broadcaster interface {
	Send(connectionID string, msg models.Message)
	Broadcast(connectionIDs []string, msg models.Message)
}

func broadcastToRoom(b Broadcaster, room *models.Room, eventType string, data interface{}) {
	b.Broadcast(room.ConnectionIDs(), models.Message{Type: eventType, Data: data})
}
