package e2e

import (
	"context"
	"sourcesync/domain/event"
	"sourcesync/protocol"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type testCollaborationSuite struct {
	BaseSuite
}

func TestCollaborationSuite(t *testing.T) {
	suite.Run(t, &testCollaborationSuite{})
}

func (s *testCollaborationSuite) TestAliceBobCarol() {
	room := "e2e-" + uuid.NewString()[:8]

	alice := s.Connect("alice")
	defer alice.Close()
	bob := s.Connect("bob")
	defer bob.Close()

	var joined protocol.Joined
	s.Run("Step 1: Alice and Bob join", func() {
		alice.Send(protocol.Join{RoomID: room, Username: "alice"})
		alice.Expect(event.JoinedKind, &joined)
		s.Require().Len(joined.Clients, 1)

		bob.Send(protocol.Join{RoomID: room, Username: "bob"})
		alice.Expect(event.JoinedKind, &joined)
		s.Require().Len(joined.Clients, 2)
		s.Require().Equal("bob", joined.Username)
	})
	bobSocket := joined.SocketID

	s.Run("Step 2: Alice edits, Bob sees the buffer", func() {
		alice.Send(protocol.CodeChange{Code: "x=1"})
		var code protocol.CodeChange
		bob.Expect(event.CodeChangeKind, &code)
		s.Require().Equal("x=1", code.Code)
	})

	s.Run("Step 3: Carol joins late and gets synced", func() {
		carol := s.Connect("carol")
		defer carol.Close()
		carol.Send(protocol.Join{RoomID: room, Username: "carol"})
		carol.Expect(event.JoinedKind, &joined)
		s.Require().Len(joined.Clients, 3)

		alice.Send(protocol.SyncCode{Code: "x=1", SocketID: joined.SocketID})
		var synced protocol.CodeSynced
		carol.Expect(event.SyncCodeKind, &synced)
		s.Require().Equal("x=1", synced.Code)
	})

	s.Run("Step 4: Bob leaves", func() {
		bob.Send(protocol.Leave{})
		var left protocol.Disconnected
		alice.Expect(event.DisconnectedKind, &left)
		s.Require().Equal(bobSocket, left.SocketID)
	})
}

func (s *testCollaborationSuite) TestHealth() {
	s.WithHealth("Probe the coordinator", func(ctx context.Context, client healthpb.HealthClient) {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
		s.Require().NoError(err)
		s.Require().Equal(healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})
}
