package runtime

import (
	"sourcesync/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresence_State_Machine(t *testing.T) {
	alice := domain.ConnectionID("alice")

	tests := []struct {
		name     string
		initial  bool
		sharing  bool
		expected Transition
	}{
		{name: "StartAudio from Idle", initial: false, sharing: true, expected: Started},
		{name: "StartAudio while Sharing is a no-op", initial: true, sharing: true, expected: NoChange},
		{name: "StopAudio from Sharing", initial: true, sharing: false, expected: Stopped},
		{name: "StopAudio while Idle is a no-op", initial: false, sharing: false, expected: NoChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			presence := NewPresence()
			if tt.initial {
				req.Equal(Started, presence.SetSharing(alice, true))
			}

			req.Equal(tt.expected, presence.SetSharing(alice, tt.sharing))
			req.Equal(tt.sharing, presence.IsSharing(alice))
		})
	}
}

func TestPresence_Forget(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	// Given Alice shares and Bob doesn't
	presence.SetSharing("alice", true)

	// Then only Alice's disconnect triggers a stop
	req.Equal(Stopped, presence.Forget("alice"))
	req.Equal(NoChange, presence.Forget("bob"))
	req.False(presence.IsSharing("alice"))
}

func TestPresence_Annotate_Defaults_To_Idle(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	presence.SetSharing("bob", true)

	roster := presence.Annotate([]domain.Participant{
		{ConnectionID: "alice", DisplayName: "Alice"},
		{ConnectionID: "bob", DisplayName: "Bob"},
	})

	req.Equal(domain.Roster{
		{ConnectionID: "alice", DisplayName: "Alice", Sharing: false},
		{ConnectionID: "bob", DisplayName: "Bob", Sharing: true},
	}, roster)
}
