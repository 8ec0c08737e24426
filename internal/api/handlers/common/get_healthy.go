package common

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-wallet-connect/internal/api"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Internal.GET("/healthy", getHealthyHandler(s))
}

// 进程存活即健康，不检查依赖
func getHealthyHandler(_ *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
}
