package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sourcesync/domain"
	"sourcesync/errors"
	"sourcesync/protocol"
	"sourcesync/services"
	"sourcesync/sink"
	"time"

	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type Config struct {
	ReliableBuffer  int
	AudioBuffer     int
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	MaxMessageBytes int64
	AllowedOrigins  []string
}

// pongWait leaves room for one missed ping.
func (c Config) pongWait() time.Duration {
	return 2 * c.PingInterval
}

// Server owns every socket. Each connection gets one read goroutine feeding
// the room service, and one write pump that is the only writer of data frames.
type Server struct {
	log      *slog.Logger
	rooms    services.IRoomService
	cfg      Config
	upgrader websocket.Upgrader
}

func NewServer(log *slog.Logger, rooms services.IRoomService, cfg Config) *Server {
	s := &Server{log: log, rooms: rooms, cfg: cfg}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || lo.Contains(s.cfg.AllowedOrigins, "*") {
		return true
	}
	return lo.Contains(s.cfg.AllowedOrigins, origin)
}

// Handle upgrades GET /ws and serves the connection until it ends.
func (s *Server) Handle(c echo.Context) error {
	if s.rooms.Closed() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "shutting down")
	}
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader already answered the client
		s.log.Debug("Unable to upgrade request", "remote", c.Request().RemoteAddr, "error", err)
		return nil
	}
	s.Serve(c.Request().Context(), conn)
	return nil
}

// Serve runs one connection. Explicit leave and transport loss both end in
// the same Leave call, whichever happens first.
func (s *Server) Serve(ctx context.Context, conn *websocket.Conn) {
	id := domain.NewConnectionID()
	out := sink.NewConnectionSink(id, s.cfg.ReliableBuffer, s.cfg.AudioBuffer)
	log := s.log.With("connection_id", id, "remote", conn.RemoteAddr().String())
	log.Debug("Connection opened")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		s.writePump(ctx, log, conn, out)
	}()
	go s.ping(ctx, conn)

	s.readLoop(ctx, log, id, conn, out)

	if err := s.rooms.Leave(context.WithoutCancel(ctx), id); err != nil && !errors.Is(err, errors.ErrUnknownConnection) {
		log.Warn("Leave on disconnect failed", "error", err)
	}
	out.Close()
	cancel()
	<-pumpDone
	log.Debug("Connection closed")
}

func (s *Server) readLoop(ctx context.Context, log *slog.Logger, id domain.ConnectionID, conn *websocket.Conn, out *sink.ConnectionSink) {
	conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.pongWait()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.pongWait()))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug("Connection lost", "error", fmt.Errorf("%v: %w", err, errors.ErrTransport))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.pongWait()))
		s.dispatch(ctx, log, id, raw, out)
	}
}

// dispatch runs one inbound frame. Failures only reach the sender, as an error frame.
func (s *Server) dispatch(ctx context.Context, log *slog.Logger, id domain.ConnectionID, raw []byte, out *sink.ConnectionSink) {
	in, err := protocol.Decode(raw)
	if err != nil {
		s.reject(ctx, log, out, "", err)
		return
	}

	var room domain.RoomID
	switch m := in.(type) {
	case protocol.Join:
		room = domain.RoomID(m.RoomID)
		_, err = s.rooms.Join(ctx, id, room, m.Username, out)
	case protocol.Leave:
		err = s.rooms.Leave(ctx, id)
	case protocol.CodeChange:
		err = s.rooms.ChangeCode(ctx, id, m.Code)
	case protocol.SyncCode:
		err = s.rooms.SyncCode(ctx, id, domain.ConnectionID(m.SocketID), m.Code)
	case protocol.StartAudio:
		err = s.rooms.StartAudio(ctx, id)
	case protocol.StopAudio:
		err = s.rooms.StopAudio(ctx, id)
	case protocol.AudioData:
		err = s.rooms.RelayAudioChunk(ctx, id, m.AudioChunk, protocol.ChunkMime(m.AudioChunk, m.Mime))
	case protocol.SendMessage:
		_, err = s.rooms.SendMessage(ctx, id, m.Message)
	}
	if err != nil {
		s.reject(ctx, log, out, room, err)
	}
}

func (s *Server) reject(ctx context.Context, log *slog.Logger, out *sink.ConnectionSink, room domain.RoomID, err error) {
	log.Debug("Frame rejected", "room", room, "error", err)
	if consumeErr := out.Consume(ctx, protocol.Reject(room, err)); consumeErr != nil {
		log.Debug("Error frame dropped", "error", consumeErr)
	}
}

// writePump drains the sink to the socket. When the sink closes, because the
// peer fell behind or the server shuts down, it says goodbye and hangs up,
// which ends the read loop.
func (s *Server) writePump(ctx context.Context, log *slog.Logger, conn *websocket.Conn, out *sink.ConnectionSink) {
	defer conn.Close()
	for {
		e, err := out.Next(ctx)
		if err != nil {
			closing := websocket.FormatCloseMessage(websocket.CloseGoingAway, "connection closed")
			_ = conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(s.cfg.WriteTimeout))
			return
		}
		frame, err := protocol.Encode(e)
		if err != nil {
			log.Error("Unable to encode event", "kind", e.Kind(), "error", err)
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Debug("Write failed", "error", fmt.Errorf("%v: %w", err, errors.ErrTransport))
			out.Close()
			return
		}
	}
}

// ping keeps idle connections alive. WriteControl may run next to the pump.
func (s *Server) ping(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}
