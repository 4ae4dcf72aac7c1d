package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sourcesync/contract"
	"sourcesync/domain"
	"sourcesync/errors"
	"strings"
	"time"
)

const maxResponseBytes = 1 << 20

// PistonClient talks to a Piston compatible execution API.
type PistonClient struct {
	log     *slog.Logger
	baseURL string
	client  *http.Client
}

var _ contract.CodeExecutor = (*PistonClient)(nil)

func NewPistonClient(log *slog.Logger, baseURL string, timeout time.Duration) *PistonClient {
	return &PistonClient{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type pistonFile struct {
	Content string `json:"content"`
}

type pistonRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []pistonFile `json:"files"`
}

type pistonStage struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Output string `json:"output"`
	Code   *int   `json:"code"`
	Signal string `json:"signal"`
}

type pistonResponse struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Compile  *pistonStage `json:"compile"`
	Run      pistonStage  `json:"run"`
	Message  string       `json:"message"`
}

func (c *PistonClient) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error) {
	version := req.Version
	if version == "" {
		version = "*"
	}
	body, err := json.Marshal(pistonRequest{
		Language: req.Language,
		Version:  version,
		Files:    []pistonFile{{Content: req.Source}},
	})
	if err != nil {
		return domain.ExecutionResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return domain.ExecutionResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("%v: %w", err, errors.ErrExecution)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("read response: %v: %w", err, errors.ErrExecution)
	}
	var decoded pistonResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("status %d: %v: %w", resp.StatusCode, err, errors.ErrExecution)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.ExecutionResult{}, fmt.Errorf("status %d: %s: %w", resp.StatusCode, decoded.Message, errors.ErrExecution)
	}
	c.log.Debug("Execution answered", "language", decoded.Language, "version", decoded.Version,
		"latency_ms", time.Since(start).Milliseconds())

	return toResult(decoded), nil
}

// toResult reports a failed compilation as the run outcome.
func toResult(resp pistonResponse) domain.ExecutionResult {
	stage := resp.Run
	if resp.Compile != nil && resp.Compile.Code != nil && *resp.Compile.Code != 0 {
		stage = *resp.Compile
	}
	exitCode := 0
	if stage.Code != nil {
		exitCode = *stage.Code
	} else if stage.Signal != "" {
		exitCode = -1
	}
	return domain.ExecutionResult{
		Stdout:   stage.Stdout,
		Stderr:   stage.Stderr,
		Output:   stage.Output,
		ExitCode: exitCode,
	}
}
