package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"sourcesync/domain/event"
	"sourcesync/protocol"
	"sourcesync/runtime"
	"sourcesync/services"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type harness struct {
	url         string
	coordinator *runtime.Coordinator
	close       func()
}

func newHarness(t *testing.T, reliableBuffer int) harness {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	relay := runtime.NewRelay(log, registry, make(chan event.Event, 64), time.Second)
	coordinator := runtime.NewCoordinator(log, registry, relay, runtime.NewRoomTable(), nil)
	server := NewServer(log, services.NewRoomService(coordinator), Config{
		ReliableBuffer:  reliableBuffer,
		AudioBuffer:     4,
		WriteTimeout:    time.Second,
		PingInterval:    time.Second,
		MaxMessageBytes: 1 << 20,
		AllowedOrigins:  []string{"*"},
	})

	router := echo.New()
	router.GET("/ws", server.Handle)
	httpServer := httptest.NewServer(router)
	return harness{
		url:         "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws",
		coordinator: coordinator,
		close: func() {
			coordinator.Close()
			httpServer.Close()
		},
	}
}

type peer struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, url string) *peer {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return &peer{t: t, conn: conn}
}

func (p *peer) send(in protocol.Inbound) {
	raw, err := protocol.EncodeInbound(in)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, raw))
}

// expect reads frames until one named eventName shows up and decodes its data.
func (p *peer) expect(eventName string, data any) {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, raw, err := p.conn.ReadMessage()
		require.NoError(p.t, err, "waiting for %s", eventName)
		var envelope protocol.Envelope
		require.NoError(p.t, json.Unmarshal(raw, &envelope))
		if envelope.Event != eventName {
			continue
		}
		require.Equal(p.t, protocol.Version, envelope.V)
		if data != nil {
			require.NoError(p.t, json.Unmarshal(envelope.Data, data))
		}
		return
	}
}

// join returns the socket id the server gave this peer.
func (p *peer) join(room, username string) string {
	p.send(protocol.Join{RoomID: room, Username: username})
	var joined protocol.Joined
	p.expect("joined", &joined)
	require.Equal(p.t, username, joined.Username)
	return joined.SocketID
}

func TestServer_Collaboration_Scenario(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, 64)
	defer h.close()

	// Given Alice opens the room
	alice := dial(t, h.url)
	defer alice.conn.Close()
	aliceID := alice.join("abc123", "Alice")

	// When Bob joins
	bob := dial(t, h.url)
	defer bob.conn.Close()
	bobID := bob.join("abc123", "Bob")

	// Then Alice sees Bob with the same roster
	var joined protocol.Joined
	alice.expect("joined", &joined)
	req.Equal([]protocol.Client{
		{SocketID: aliceID, Username: "Alice", IsMuted: true},
		{SocketID: bobID, Username: "Bob", IsMuted: true},
	}, joined.Clients)

	// When Alice types, Bob gets the buffer
	alice.send(protocol.CodeChange{Code: "print('hi')"})
	var change protocol.CodeChange
	bob.expect("code-change", &change)
	req.Equal("print('hi')", change.Code)

	// When Carol joins, Alice pushes the buffer to her only
	carol := dial(t, h.url)
	defer carol.conn.Close()
	carolID := carol.join("abc123", "Carol")
	alice.send(protocol.SyncCode{Code: "print('hi')", SocketID: carolID})
	var synced protocol.CodeSynced
	carol.expect("sync-code", &synced)
	req.Equal(protocol.CodeSynced{Code: "print('hi')", SocketID: aliceID}, synced)

	// When Alice shares her microphone
	alice.send(protocol.StartAudio{RoomID: "abc123", UserID: "Alice"})
	var started protocol.AudioPresence
	bob.expect("user-started-audio", &started)
	req.Equal(protocol.AudioPresence{UserID: "Alice", SocketID: aliceID}, started)
	alice.send(protocol.AudioData{AudioChunk: "data:audio/webm;base64,GkXfo59ChoEB", UserID: "Alice"})
	var chunk protocol.AudioChunk
	carol.expect("audio-data", &chunk)
	req.Equal("audio/webm", chunk.Mime)
	req.Equal(aliceID, chunk.SocketID)

	// When Bob posts in the chat, everyone sees it
	bob.send(protocol.SendMessage{Message: "looks good"})
	var posted protocol.NewMessage
	bob.expect("new-message", &posted)
	req.Equal("Bob", posted.Username)
	req.Equal("looks good", posted.Message)
	alice.expect("new-message", nil)

	// When Alice's socket drops while sharing
	req.NoError(alice.conn.Close())

	// Then Bob gets the synthetic stop and the departure
	var stopped protocol.AudioPresence
	bob.expect("user-stopped-audio", &stopped)
	req.Equal(aliceID, stopped.SocketID)
	var gone protocol.Disconnected
	bob.expect("disconnected", &gone)
	req.Equal(protocol.Disconnected{SocketID: aliceID, Username: "Alice"}, gone)

	roster, ok := h.coordinator.Roster("abc123")
	req.True(ok)
	req.Len(roster, 2)
}

func TestServer_Error_Frames(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, 64)
	defer h.close()
	bob := dial(t, h.url)
	defer bob.conn.Close()

	// Unknown event
	req.NoError(bob.conn.WriteMessage(websocket.TextMessage, []byte(`{"v":1,"event":"conde-change","data":{}}`)))
	var rejected protocol.Error
	bob.expect("error", &rejected)
	req.Equal(protocol.CodeUnknownEvent, rejected.Code)

	// Acting before joining
	bob.send(protocol.CodeChange{Code: "x"})
	bob.expect("error", &rejected)
	req.Equal(protocol.CodeNotJoined, rejected.Code)

	// Joining a second room
	bob.join("abc123", "Bob")
	bob.send(protocol.Join{RoomID: "xyz789", Username: "Bob"})
	bob.expect("error", &rejected)
	req.Equal(protocol.CodeAlreadyRegistered, rejected.Code)
	_, ok := h.coordinator.Roster("xyz789")
	req.False(ok)

	// Future protocol version
	req.NoError(bob.conn.WriteMessage(websocket.TextMessage, []byte(`{"v":2,"event":"leave"}`)))
	bob.expect("error", &rejected)
	req.Equal(protocol.CodeUnsupportedVersion, rejected.Code)
}

func TestServer_Explicit_Leave_Keeps_Socket(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, 64)
	defer h.close()
	alice := dial(t, h.url)
	defer alice.conn.Close()
	bob := dial(t, h.url)
	defer bob.conn.Close()
	alice.join("abc123", "Alice")
	bob.join("abc123", "Bob")

	// When Alice leaves without closing the socket
	alice.send(protocol.Leave{})
	bob.expect("disconnected", nil)

	// Then she can join another room on the same connection
	alice.join("xyz789", "Alice")
	req.Equal(2, h.coordinator.Connections())
}

func TestServer_Shutdown_Closes_Sockets(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, 64)
	defer h.close()
	alice := dial(t, h.url)
	defer alice.conn.Close()
	alice.join("abc123", "Alice")

	// When the coordinator shuts down
	h.coordinator.Close()

	// Then the server hangs up
	req.NoError(alice.conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	for {
		_, _, err := alice.conn.ReadMessage()
		if err != nil {
			req.True(websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
			return
		}
	}
}
