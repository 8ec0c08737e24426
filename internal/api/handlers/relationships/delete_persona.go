package relationships

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/api/httperrors"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/util"
)

func DeletePersonaRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.DELETE("/relationships/:address/personas/:identity", deletePersonaHandler(s))
}

// 从关系中移除单个身份，最后一个身份被移除时整条关系随之删除
func deletePersonaHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)
		address := c.Param("address")
		identity := c.Param("identity")

		err := s.Store.DeletePersona(ctx, address, s.Config.Wallet.NetworkID, identity)
		if err != nil {
			if err == relationship.ErrNotFound {
				return httperrors.ErrNotFoundRelationship
			}
			log.Error().Err(err).
				Str("dapp_definition_address", address).
				Str("identity_address", identity).
				Msg("Failed to delete persona from relationship")
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
