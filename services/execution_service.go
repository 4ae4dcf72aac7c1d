package services

import (
	"context"
	"fmt"
	"log/slog"
	"sourcesync/contract"
	"sourcesync/domain"
	"sourcesync/errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type IExecutionService interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error)
}

// ExecutionService validates run requests before handing them to the executor.
type ExecutionService struct {
	log      *slog.Logger
	executor contract.CodeExecutor
}

func NewExecutionService(log *slog.Logger, executor contract.CodeExecutor) *ExecutionService {
	return &ExecutionService{log: log, executor: executor}
}

func (s *ExecutionService) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error) {
	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	if err := validate.Struct(req); err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("%v: %w", err, errors.ErrInvalidPayload)
	}
	result, err := s.executor.Execute(ctx, req)
	if err != nil {
		s.log.Warn("Execution failed", "language", req.Language, "error", err)
		return domain.ExecutionResult{}, err
	}
	s.log.Debug("Execution done", "language", req.Language, "exit_code", result.ExitCode)
	return result, nil
}
