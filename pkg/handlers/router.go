package handlers

import (
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/valyala/fasthttp"
)

type Router struct {
	content *ContentHandler
	rooms   *RoomHandler
	socket  *SocketHandler
	origins []string
	log     *slog.Logger
}

func NewRouter(content *ContentHandler, rooms *RoomHandler, socket *SocketHandler, origins []string, log *slog.Logger) *Router {
	return &Router{
		content: content,
		rooms:   rooms,
		socket:  socket,
		origins: origins,
		log:     log,
	}
}

func (r *Router) HandleRequest(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	r.log.Debug("Request", "method", method, "path", path)

	ctx.Response.Header.Set("Server", "Globetrotter-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	r.setCORS(ctx)

	if method == fasthttp.MethodOptions {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	switch {
	case path == "/api/health" && method == fasthttp.MethodGet:
		r.content.HealthCheck(ctx)

	case path == "/api/destinations/count" && method == fasthttp.MethodGet:
		r.content.GetDestinationCount(ctx)
	case path == "/api/destinations/reload" && method == fasthttp.MethodPost:
		r.content.ReloadDestinations(ctx)

	case path == "/api/rooms" && method == fasthttp.MethodGet:
		r.rooms.GetRooms(ctx)
	case strings.HasPrefix(path, "/api/rooms/") && method == fasthttp.MethodGet:
		parts := strings.Split(path, "/")
		if len(parts) == 4 && parts[3] != "" {
			ctx.SetUserValue("id", parts[3])
			r.rooms.GetRoom(ctx)
		} else {
			serve404(ctx)
		}

	case path == "/ws":
		r.socket.HandleWebSocket(ctx)

	default:
		serve404(ctx)
	}
}

func (r *Router) setCORS(ctx *fasthttp.RequestCtx) {
	origin := string(ctx.Request.Header.Peek("Origin"))
	switch {
	case r.origins == nil:
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	case origin != "" && lo.Contains(r.origins, origin):
		ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
		ctx.Response.Header.Set("Vary", "Origin")
	}
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func serve404(ctx *fasthttp.RequestCtx) {
	respondWithError(ctx, fasthttp.StatusNotFound, "Route not found")
}
