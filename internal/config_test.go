package internal

import (
	"testing"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.Equal(256, config.ConnectionBufferSize)
	req.Equal(16, config.AudioBufferSize)
	req.Equal(200*time.Millisecond, config.RestartInterval)
	req.Equal("0.0.0.0:8080", config.HTTPAddress())
	req.Equal([]string{"*"}, config.AllowedOrigins())
}

func TestConfig_From_Environment(t *testing.T) {
	req := require.New(t)
	t.Setenv("PORT", "3000")
	t.Setenv("CORS_ALLOW", "http://localhost:3000, https://sourcesync.dev")
	t.Setenv("SINK_TIMEOUT", "250ms")
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.Equal(3000, config.Port)
	req.Equal(250*time.Millisecond, config.SinkTimeout)
	req.Equal([]string{"http://localhost:3000", "https://sourcesync.dev"}, config.AllowedOrigins())
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	_, err = CharacterRune("**")
	req.Error(err)
}
