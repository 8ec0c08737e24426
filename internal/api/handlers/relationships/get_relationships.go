package relationships

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/util"
)

// GetRelationshipsResponse 当前网络下的全部授权关系
type GetRelationshipsResponse struct {
	Relationships []RelationshipPayload `json:"relationships"`
}

// RelationshipPayload 授权关系的 API 投影
type RelationshipPayload struct {
	DappDefinitionAddress string           `json:"dAppDefinitionAddress"`
	NetworkID             uint8            `json:"networkId"`
	DisplayName           string           `json:"displayName,omitempty"`
	Personas              []PersonaPayload `json:"personas"`
}

// PersonaPayload 关系中单个身份的 API 投影
type PersonaPayload struct {
	IdentityAddress string          `json:"identityAddress"`
	LastLogin       strfmt.DateTime `json:"lastLogin"`
	SharedAccounts  []string        `json:"sharedAccounts,omitempty"`
}

func GetRelationshipsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.GET("/relationships", getRelationshipsHandler(s))
}

func getRelationshipsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		rels, err := s.Store.List(ctx, s.Config.Wallet.NetworkID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list relationships")
			return err
		}

		payload := make([]RelationshipPayload, 0, len(rels))
		for _, rel := range rels {
			payload = append(payload, toRelationshipPayload(rel))
		}
		return c.JSON(http.StatusOK, &GetRelationshipsResponse{Relationships: payload})
	}
}

func toRelationshipPayload(rel *relationship.Relationship) RelationshipPayload {
	out := RelationshipPayload{
		DappDefinitionAddress: rel.DappDefinitionAddress,
		NetworkID:             rel.NetworkID,
		DisplayName:           rel.DisplayName,
		Personas:              make([]PersonaPayload, 0, len(rel.Personas)),
	}
	for _, persona := range rel.Personas {
		item := PersonaPayload{
			IdentityAddress: persona.IdentityAddress,
			LastLogin:       strfmt.DateTime(persona.LastLogin),
		}
		if persona.SharedAccounts != nil {
			item.SharedAccounts = persona.SharedAccounts.AccountAddresses
		}
		out.Personas = append(out.Personas, item)
	}
	return out
}
