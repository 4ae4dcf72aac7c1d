package executor

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sourcesync/domain"
	"sourcesync/errors"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestPistonClient_Execute(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	var received pistonRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/api/v2/execute", r.URL.Path)
		req.NoError(json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"language":"python","version":"3.10.0",
			"run":{"stdout":"hi\n","stderr":"","output":"hi\n","code":0,"signal":null}}`))
	}))
	defer server.Close()
	client := NewPistonClient(log, server.URL+"/api/v2/", time.Second)

	result, err := client.Execute(context.Background(), domain.ExecutionRequest{Language: "python", Source: "print('hi')"})

	req.NoError(err)
	req.Equal(domain.ExecutionResult{Stdout: "hi\n", Output: "hi\n"}, result)
	req.Equal(pistonRequest{Language: "python", Version: "*", Files: []pistonFile{{Content: "print('hi')"}}}, received)
}

func TestPistonClient_Compile_Error_Wins(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"language":"c","version":"10.2.0",
			"compile":{"stdout":"","stderr":"syntax error","output":"syntax error","code":1},
			"run":{"stdout":"","stderr":"","output":"","code":null}}`))
	}))
	defer server.Close()
	client := NewPistonClient(log, server.URL, time.Second)

	result, err := client.Execute(context.Background(), domain.ExecutionRequest{Language: "c", Source: "int main("})

	req.NoError(err)
	req.Equal(1, result.ExitCode)
	req.Equal("syntax error", result.Stderr)
}

func TestPistonClient_Errors(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unknown language",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message":"brainfuck-9.9 runtime is unknown"}`))
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
		},
		{
			name: "too slow",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			client := NewPistonClient(log, server.URL, 50*time.Millisecond)

			_, err := client.Execute(context.Background(), domain.ExecutionRequest{Language: "python", Source: "1"})

			req.ErrorIs(err, errors.ErrExecution)
		})
	}
}
