package handlers

import (
	"errors"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/backsoul/globetrotter/pkg/services"
	"github.com/valyala/fasthttp"
)

// RoomHandler exposes read-only snapshots of the live rooms
type RoomHandler struct {
	rooms *services.RoomService
}

func NewRoomHandler(rooms *services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// GetRooms handles GET /api/rooms
func (h *RoomHandler) GetRooms(ctx *fasthttp.RequestCtx) {
	rooms := h.rooms.ListRooms()
	if rooms == nil {
		rooms = []models.Room{}
	}
	respondWithSuccess(ctx, models.RoomsResponse{Rooms: rooms, Count: len(rooms)}, "")
}

// GetRoom handles GET /api/rooms/{id}
func (h *RoomHandler) GetRoom(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	room, err := h.rooms.GetRoom(id)
	if errors.Is(err, models.ErrRoomNotFound) {
		respondWithError(ctx, fasthttp.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	respondWithSuccess(ctx, room, "")
}
