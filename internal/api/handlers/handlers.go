package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/api/handlers/common"
	"github.com/kashguard/go-wallet-connect/internal/api/handlers/interactions"
	"github.com/kashguard/go-wallet-connect/internal/api/handlers/link"
	"github.com/kashguard/go-wallet-connect/internal/api/handlers/relationships"
)

// AttachAllRoutes 注册全部路由
func AttachAllRoutes(s *api.Server) []*echo.Route {
	return []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		interactions.PostInteractionRoute(s),
		link.GetLinkRoute(s),
		relationships.GetRelationshipsRoute(s),
		relationships.DeleteRelationshipRoute(s),
		relationships.DeletePersonaRoute(s),
	}
}
