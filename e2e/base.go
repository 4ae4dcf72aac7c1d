package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"sourcesync/domain/event"
	"sourcesync/protocol"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.WsAddr == "" {
		s.T().Skip("WS_ADDR is not set, no server to talk to")
	}
}

func (s *BaseSuite) header(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Peer is one browser tab talking to the server.
type Peer struct {
	s    *BaseSuite
	name string
	conn *websocket.Conn
}

// Connect opens a socket, the caller closes it.
func (s *BaseSuite) Connect(name string) *Peer {
	s.header(name + " connects")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.Config.WsAddr, nil)
	s.Require().NoError(err, "Failed to connect to "+s.Config.WsAddr)
	return &Peer{s: s, name: name, conn: conn}
}

func (p *Peer) Close() {
	_ = p.conn.Close()
}

func (p *Peer) Send(in protocol.Inbound) {
	frame, err := protocol.EncodeInbound(in)
	p.s.Require().NoError(err)
	if p.s.Config.DebugJSON {
		p.s.T().Logf("%s >>> %s", p.name, frame)
	}
	p.s.Require().NoError(p.conn.WriteMessage(websocket.TextMessage, frame))
}

// Expect reads frames until one of the given kind shows up and decodes its data.
func (p *Peer) Expect(kind event.Kind, data any) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		p.s.Require().NoError(p.conn.SetReadDeadline(deadline))
		_, raw, err := p.conn.ReadMessage()
		p.s.Require().NoError(err, "%s never got %s", p.name, kind)
		if p.s.Config.DebugJSON {
			p.s.T().Logf("%s <<< %s", p.name, raw)
		}
		var envelope protocol.Envelope
		p.s.Require().NoError(json.Unmarshal(raw, &envelope))
		if envelope.Event == string(kind) {
			p.s.Require().NoError(json.Unmarshal(envelope.Data, data))
			return
		}
	}
}

// WithHealth provides a health client when GRPC_ADDR is set.
func (s *BaseSuite) WithHealth(name string, fn func(ctx context.Context, client healthpb.HealthClient)) {
	if s.Config.GrpcAddr == "" {
		s.T().Skip("GRPC_ADDR is not set")
	}
	s.header(name)
	conn, err := grpc.NewClient(s.Config.GrpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.GrpcAddr)
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, healthpb.NewHealthClient(conn))
}
