package relationships

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/util"
)

func DeleteRelationshipRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.DELETE("/relationships/:address", deleteRelationshipHandler(s))
}

// 断开 dApp：删除整条授权关系
func deleteRelationshipHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)
		address := c.Param("address")

		if err := s.Store.Delete(ctx, address, s.Config.Wallet.NetworkID); err != nil {
			log.Error().Err(err).Str("dapp_definition_address", address).Msg("Failed to delete relationship")
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
