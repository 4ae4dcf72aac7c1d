package rest

import (
	"net/http"
	"sourcesync/domain"
	"sourcesync/errors"
	"sourcesync/services"

	echo "github.com/labstack/echo/v4"
)

type ExecutionController struct {
	executions services.IExecutionService
}

var _ Resolvable = (*ExecutionController)(nil)

func NewExecutionController(executions services.IExecutionService) *ExecutionController {
	return &ExecutionController{executions: executions}
}

func (ctrl *ExecutionController) Resolve(router *echo.Echo) error {
	router.POST("/api/execute", ctrl.Execute)
	return nil
}

// Execute runs one snippet. Bad input is the caller's fault, a failing
// executor is reported as a bad gateway.
func (ctrl *ExecutionController) Execute(c echo.Context) error {
	var req domain.ExecutionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrInvalidPayload.Error())
	}
	result, err := ctrl.executions.Execute(c.Request().Context(), req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, result)
	case errors.Is(err, errors.ErrInvalidPayload):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrExecution):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
	default:
		return err
	}
}
