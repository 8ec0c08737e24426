package common

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/util"
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Internal.GET("/ready", getReadyHandler(s))
}

// 数据库与 Redis 均可达才算就绪
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		if err := s.Ready(ctx); err != nil {
			log.Warn().Err(err).Msg("Readiness check failed")
			return c.String(http.StatusServiceUnavailable, "Not ready.")
		}
		return c.String(http.StatusOK, "Ready.")
	}
}
