package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/backsoul/globetrotter/pkg/services"
	"github.com/valyala/fasthttp"
)

// ContentHandler serves the destination catalogue endpoints and the health check
type ContentHandler struct {
	content  *services.ContentService
	rooms    *services.RoomService
	seedFile string
	timeout  time.Duration
	log      *slog.Logger
}

func NewContentHandler(content *services.ContentService, rooms *services.RoomService, seedFile string, timeout time.Duration, log *slog.Logger) *ContentHandler {
	return &ContentHandler{
		content:  content,
		rooms:    rooms,
		seedFile: seedFile,
		timeout:  timeout,
		log:      log,
	}
}

// HealthCheck handles GET /api/health
func (h *ContentHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	c, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.content.HealthCheck(c); err != nil {
		h.log.Error("Content store unhealthy", "backend", h.content.Backend(), "error", err)
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, "Content store unavailable")
		return
	}

	count, err := h.content.Count(c)
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, "Error counting destinations")
		return
	}

	respondWithSuccess(ctx, models.HealthResponse{
		Status:       "healthy",
		Backend:      h.content.Backend(),
		Destinations: count,
		Rooms:        h.rooms.RoomCount(),
	}, "Server is running")
}

// GetDestinationCount handles GET /api/destinations/count
func (h *ContentHandler) GetDestinationCount(ctx *fasthttp.RequestCtx) {
	c, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	count, err := h.content.Count(c)
	if err != nil {
		h.log.Error("Error counting destinations", "error", err)
		respondWithError(ctx, fasthttp.StatusInternalServerError, "Error counting destinations")
		return
	}
	respondWithSuccess(ctx, map[string]int{"count": count}, "")
}

// ReloadDestinations handles POST /api/destinations/reload
func (h *ContentHandler) ReloadDestinations(ctx *fasthttp.RequestCtx) {
	c, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	count, err := h.content.LoadDestinationsFromFile(c, h.seedFile)
	if err != nil {
		h.log.Error("Error reloading destinations", "file", h.seedFile, "error", err)
		respondWithError(ctx, fasthttp.StatusInternalServerError, "Error reloading destinations")
		return
	}

	h.log.Info("Destinations reloaded", "count", count)
	respondWithSuccess(ctx, map[string]int{"count": count}, "Destinations reloaded")
}
