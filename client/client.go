package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"sourcesync/domain/event"
	"sourcesync/protocol"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"SOURCESYNC_SERVER_ADDR,default=ws://localhost:8080/ws"`
	RoomID        string `env:"SOURCESYNC_ROOM_ID,default=lobby"`
	Username      string `env:"SOURCESYNC_USERNAME,default=guest"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run joins one room and bridges the terminal with it. Plain lines are chat
// messages, "/code <text>" replaces the shared buffer, "/leave" leaves.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if _, err := url.Parse(config.ServerAddress); err != nil {
		return exitConfig, fmt.Errorf("invalid server address: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerAddress, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if err := send(conn, protocol.Join{RoomID: config.RoomID, Username: config.Username}); err != nil {
		return exitRuntime, err
	}
	log.Info(fmt.Sprintf(">>> Connected to %s, room %s (Ctrl+C to quit)", config.ServerAddress, config.RoomID))

	go readInput(ctx, log, conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("read error: %w", err)
		}
		if line, ok := render(raw); ok {
			log.Info(line)
		}
	}
}

func readInput(ctx context.Context, log *slog.Logger, conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := send(conn, parseLine(scanner.Text())); err != nil {
			log.Warn("Unable to send", "error", err)
			return
		}
	}
}

func parseLine(line string) protocol.Inbound {
	switch {
	case line == "/leave":
		return protocol.Leave{}
	case strings.HasPrefix(line, "/code "):
		return protocol.CodeChange{Code: strings.TrimPrefix(line, "/code ")}
	default:
		return protocol.SendMessage{Message: line}
	}
}

// send is only called from one goroutine once the join is out.
func send(conn *websocket.Conn, in protocol.Inbound) error {
	frame, err := protocol.EncodeInbound(in)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// render turns a server frame into one terminal line.
func render(raw []byte) (string, bool) {
	var envelope protocol.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", false
	}
	switch event.Kind(envelope.Event) {
	case event.JoinedKind:
		var joined protocol.Joined
		if json.Unmarshal(envelope.Data, &joined) != nil {
			return "", false
		}
		names := make([]string, 0, len(joined.Clients))
		for _, c := range joined.Clients {
			names = append(names, c.Username)
		}
		return fmt.Sprintf("%s joined, room: %s", joined.Username, strings.Join(names, ", ")), true
	case event.DisconnectedKind:
		var left protocol.Disconnected
		if json.Unmarshal(envelope.Data, &left) != nil {
			return "", false
		}
		return left.Username + " left", true
	case event.CodeChangeKind, event.SyncCodeKind:
		var code protocol.CodeChange
		if json.Unmarshal(envelope.Data, &code) != nil {
			return "", false
		}
		return fmt.Sprintf("--- code ---\n%s\n------------", code.Code), true
	case event.NewMessageKind:
		var msg protocol.NewMessage
		if json.Unmarshal(envelope.Data, &msg) != nil {
			return "", false
		}
		return fmt.Sprintf("[%s] %s: %s", msg.At.Format(time.TimeOnly), msg.Username, msg.Message), true
	case event.RejectedKind:
		var e protocol.Error
		if json.Unmarshal(envelope.Data, &e) != nil {
			return "", false
		}
		return fmt.Sprintf("error %s: %s", e.Code, e.Message), true
	}
	return "", false
}
