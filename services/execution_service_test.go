package services

import (
	"context"
	"fmt"
	"log/slog"
	"sourcesync/domain"
	"sourcesync/errors"
	"sourcesync/mocks"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestExecutionService_Execute(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	executor := mocks.NewMockCodeExecutor(ctrl)
	service := NewExecutionService(log, executor)

	// Given the executor runs python
	expected := domain.ExecutionResult{Stdout: "hi\n", Output: "hi\n"}
	executor.EXPECT().
		Execute(gomock.Any(), domain.ExecutionRequest{Language: "python", Source: "print('hi')"}).
		Return(expected, nil).
		Times(1)

	// When the language comes with noise
	result, err := service.Execute(context.Background(), domain.ExecutionRequest{Language: " Python ", Source: "print('hi')"})

	// Then it is normalized before the call
	req.NoError(err)
	req.Equal(expected, result)
}

func TestExecutionService_Rejects_Invalid_Request(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	executor := mocks.NewMockCodeExecutor(ctrl)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Times(0)
	service := NewExecutionService(log, executor)

	_, err := service.Execute(context.Background(), domain.ExecutionRequest{Language: "python"})
	req.ErrorIs(err, errors.ErrInvalidPayload)

	_, err = service.Execute(context.Background(), domain.ExecutionRequest{Source: "print(1)"})
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestExecutionService_Propagates_Executor_Error(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	executor := mocks.NewMockCodeExecutor(ctrl)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(domain.ExecutionResult{}, fmt.Errorf("status 503: %w", errors.ErrExecution)).
		Times(1)
	service := NewExecutionService(log, executor)

	_, err := service.Execute(context.Background(), domain.ExecutionRequest{Language: "go", Source: "package main"})

	req.ErrorIs(err, errors.ErrExecution)
}
