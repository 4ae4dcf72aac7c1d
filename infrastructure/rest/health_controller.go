package rest

import (
	"net/http"
	"sourcesync/observability"
	"sourcesync/services"

	echo "github.com/labstack/echo/v4"
)

type HealthController struct {
	rooms      services.IRoomService
	monitoring *observability.MonitoringManager
}

var _ Resolvable = (*HealthController)(nil)

func NewHealthController(rooms services.IRoomService, monitoring *observability.MonitoringManager) *HealthController {
	return &HealthController{rooms: rooms, monitoring: monitoring}
}

func (ctrl *HealthController) Resolve(router *echo.Echo) error {
	router.GET("/healthz", ctrl.Health)
	router.GET("/debug/stats", ctrl.Stats)
	return nil
}

func (ctrl *HealthController) Health(c echo.Context) error {
	if ctrl.rooms.Closed() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (ctrl *HealthController) Stats(c echo.Context) error {
	stats := ctrl.monitoring.GetLatest(len(ctrl.rooms.Rooms()), ctrl.rooms.Connections())
	return c.JSON(http.StatusOK, stats)
}
