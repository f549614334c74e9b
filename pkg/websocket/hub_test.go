package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/fasthttp/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type hubFixture struct {
	hub       *Hub
	listener  *fasthttputil.InmemoryListener
	connected chan *Client
	received  chan []byte
}

func newHubFixture(t *testing.T, cfg Config) hubFixture {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(cfg, log)
	go hub.Run(ctx)

	f := hubFixture{
		hub:       hub,
		listener:  fasthttputil.NewInmemoryListener(),
		connected: make(chan *Client, 8),
		received:  make(chan []byte, 8),
	}
	upgrader := websocket.FastHTTPUpgrader{CheckOrigin: func(*fasthttp.RequestCtx) bool { return true }}
	server := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		_ = upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
			client := hub.Register(conn)
			f.connected <- client
			hub.ReadPump(client, func(payload []byte) { f.received <- payload })
			hub.Unregister(client)
		})
	}}
	go func() { _ = server.Serve(f.listener) }()

	t.Cleanup(func() {
		cancel()
		_ = server.Shutdown()
	})
	return f
}

func (f hubFixture) dial(t *testing.T) (*websocket.Conn, *Client) {
	dialer := websocket.Dialer{
		NetDial: func(_, _ string) (net.Conn, error) { return f.listener.Dial() },
	}
	conn, _, err := dialer.Dial("ws://hub.test/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	select {
	case client := <-f.connected:
		return conn, client
	case <-time.After(time.Second):
		t.Fatal("client never registered")
		return nil, nil
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) models.InboundMessage {
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg models.InboundMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

var testConfig = Config{
	SendBuffer:   16,
	PingInterval: time.Second,
	ReadTimeout:  5 * time.Second,
	WriteTimeout: time.Second,
}

func TestHub_BroadcastReachesTargetsInOrder(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t, testConfig)
	connA, clientA := f.dial(t)
	connB, clientB := f.dial(t)
	req.Eventually(func() bool { return f.hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	// When two frames are broadcast and one is sent to a only
	f.hub.Broadcast([]string{clientA.ID, clientB.ID}, models.Message{Type: "first"})
	f.hub.Send(clientA.ID, models.Message{Type: "private"})
	f.hub.Broadcast([]string{clientA.ID, clientB.ID, "unknown"}, models.Message{Type: "second"})

	// Then each connection sees its frames in order
	req.Equal("first", readMessage(t, connA).Type)
	req.Equal("private", readMessage(t, connA).Type)
	req.Equal("second", readMessage(t, connA).Type)
	req.Equal("first", readMessage(t, connB).Type)
	req.Equal("second", readMessage(t, connB).Type)
}

func TestHub_PayloadIsEnvelope(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t, testConfig)
	conn, client := f.dial(t)

	f.hub.Send(client.ID, models.Message{
		Type: models.EventPlayerLeft,
		Data: models.PlayerPayload{PlayerID: "p1"},
	})

	msg := readMessage(t, conn)
	req.Equal(models.EventPlayerLeft, msg.Type)
	var payload models.PlayerPayload
	req.NoError(json.Unmarshal(msg.Data, &payload))
	req.Equal("p1", payload.PlayerID)
}

func TestHub_ReadPumpForwardsTextFrames(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t, testConfig)
	conn, _ := f.dial(t)

	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	select {
	case payload := <-f.received:
		req.JSONEq(`{"type":"ping"}`, string(payload))
	case <-time.After(time.Second):
		req.Fail("frame never reached the handler")
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	req := require.New(t)
	f := newHubFixture(t, testConfig)
	conn, _ := f.dial(t)
	req.Eventually(func() bool { return f.hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	// When the client goes away
	req.NoError(conn.Close())

	// Then the hub forgets it
	req.Eventually(func() bool { return f.hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}
