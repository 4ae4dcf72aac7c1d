package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoster_Lookup(t *testing.T) {
	req := require.New(t)

	// Given two participants sharing a display name
	roster := Roster{
		{ConnectionID: "c1", DisplayName: "alice"},
		{ConnectionID: "c2", DisplayName: "alice", Sharing: true},
	}

	// Then each one is found by its connection, not by its name
	p, ok := roster.Find("c2")
	req.True(ok)
	req.True(p.Sharing)
	req.True(roster.Contains("c1"))
	req.False(roster.Contains("c3"))
	_, ok = roster.Find("c3")
	req.False(ok)
}

func TestNewConnectionID_Is_Unique(t *testing.T) {
	require.NotEqual(t, NewConnectionID(), NewConnectionID())
}
