package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

// Config points the suites at a running server. Suites skip when WS_ADDR is empty.
type Config struct {
	WsAddr   string `envconfig:"WS_ADDR"`
	GrpcAddr string `envconfig:"GRPC_ADDR"`
	// E2E_DEBUG_JSON dumps every frame sent and received
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
