package rest

import (
	"fmt"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Resolvable registers its routes on the router.
type Resolvable interface {
	Resolve(router *echo.Echo) error
}

func httpErrorHandler(e *echo.Echo, log *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		level := slog.LevelWarn
		if he, ok := err.(*echo.HTTPError); !ok || he.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.Request().Context(), level, err.Error(),
			"method", c.Request().Method,
			"path", c.Request().URL.Path)
		e.DefaultHTTPErrorHandler(err, c)
	}
}

// NewRouter builds the echo instance serving the websocket endpoint and the
// small JSON API next to it.
func NewRouter(log *slog.Logger, allowedOrigins []string, controllers ...Resolvable) (*echo.Echo, error) {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = httpErrorHandler(router, log)
	router.Use(middleware.Recover())
	router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	for _, controller := range controllers {
		if err := controller.Resolve(router); err != nil {
			return nil, fmt.Errorf("unable to resolve %T: %w", controller, err)
		}
	}
	return router, nil
}
