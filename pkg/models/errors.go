package models

import "errors"

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrRoomExists            = errors.New("room already exists")
	ErrRoomFull              = errors.New("room is full")
	ErrRoomCompleted         = errors.New("room is completed")
	ErrPlayerNotFound        = errors.New("player not found in room")
	ErrNoActiveRound         = errors.New("room has no active round")
	ErrDestinationNotFound   = errors.New("destination not found")
	ErrNotEnoughDestinations = errors.New("not enough destinations")
	ErrIdentityRequired      = errors.New("external user id is required")
)
