package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`
	GrpcPort int    `env:"GRPC_PORT,default=9090"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	AudioBufferSize      int           `env:"AUDIO_BUFFER_SIZE,default=16"`
	TelemetryBufferSize  int           `env:"TELEMETRY_BUFFER_SIZE,default=1024"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=1s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PingInterval         time.Duration `env:"PING_INTERVAL,default=25s"`
	MaxMessageBytes      int64         `env:"MAX_MESSAGE_BYTES,default=4194304"`
	CorsAllow            string        `env:"CORS_ALLOW,default=*"`

	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=32"`

	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	ExecutorURL     string        `env:"EXECUTOR_URL,default=https://emkc.org/api/v2/piston"`
	ExecutorTimeout time.Duration `env:"EXECUTOR_TIMEOUT,default=15s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func (c Config) HTTPAddress() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }
func (c Config) GrpcAddress() string { return fmt.Sprintf("%s:%d", c.Host, c.GrpcPort) }

// AllowedOrigins splits CORS_ALLOW on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CorsAllow, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
