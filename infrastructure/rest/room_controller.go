package rest

import (
	"net/http"
	"sourcesync/domain"
	"sourcesync/protocol"
	"sourcesync/services"

	echo "github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// SocketHandler upgrades and serves one websocket connection.
type SocketHandler interface {
	Handle(c echo.Context) error
}

type RoomView struct {
	ID      string            `json:"id"`
	Clients []protocol.Client `json:"clients"`
}

type RoomController struct {
	rooms  services.IRoomService
	socket SocketHandler
}

var _ Resolvable = (*RoomController)(nil)

func NewRoomController(rooms services.IRoomService, socket SocketHandler) *RoomController {
	return &RoomController{rooms: rooms, socket: socket}
}

func (ctrl *RoomController) Resolve(router *echo.Echo) error {
	router.GET("/ws", ctrl.socket.Handle)
	router.GET("/api/rooms", ctrl.ListRooms)
	router.GET("/api/rooms/:id", ctrl.GetRoom)
	return nil
}

func (ctrl *RoomController) ListRooms(c echo.Context) error {
	views := lo.Map(ctrl.rooms.Rooms(), func(r domain.RoomSummary, _ int) RoomView {
		return RoomView{ID: string(r.ID), Clients: protocol.Clients(r.Roster)}
	})
	return c.JSON(http.StatusOK, views)
}

func (ctrl *RoomController) GetRoom(c echo.Context) error {
	id := domain.RoomID(c.Param("id"))
	roster, ok := ctrl.rooms.Roster(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "room not found")
	}
	return c.JSON(http.StatusOK, RoomView{ID: string(id), Clients: protocol.Clients(roster)})
}
