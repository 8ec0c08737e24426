package interactions

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/api/httperrors"
	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/pipeline"
	"github.com/kashguard/go-wallet-connect/internal/types"
	"github.com/kashguard/go-wallet-connect/internal/util"
)

// PostInteractionPayload 到达的 dApp 请求及其来源通道
type PostInteractionPayload struct {
	Channel     interaction.RemoteChannel `json:"channel"`
	Interaction interaction.Request       `json:"interaction"`
}

// Validate 请求体必须携带交互 ID 与通道 ID
func (p *PostInteractionPayload) Validate() error {
	if p.Interaction.InteractionID == "" {
		return errors.New("interactionId is required")
	}
	if p.Channel.ID == "" {
		return errors.New("channel.id is required")
	}
	switch p.Channel.Kind {
	case interaction.ChannelLinkConnector, interaction.ChannelRemoteSession:
		return nil
	default:
		return errors.Errorf("unknown channel kind %q", p.Channel.Kind)
	}
}

// PostInteractionResponse 处理结果
type PostInteractionResponse struct {
	Status        pipeline.Status `json:"status"`
	InteractionID string          `json:"interactionId"`
	// 仅交易请求成功时
	TransactionIntentHash string `json:"transactionIntentHash,omitempty"`
}

func PostInteractionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1.POST("/interactions", postInteractionHandler(s))
}

func postInteractionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var payload PostInteractionPayload
		if err := util.BindAndValidateBody(c, &payload); err != nil {
			return err
		}

		req := payload.Interaction
		req.Channel = payload.Channel

		outcome, err := s.Handler.Handle(ctx, &req)
		if err != nil {
			// 失败响应已由管线派发，这里只向调用方回执
			log.Warn().Err(err).
				Str("interaction_id", req.InteractionID).
				Msg("Interaction failed")
			return httperrors.NewHTTPError(http.StatusUnprocessableEntity, types.PublicHTTPErrorTypeGeneric, err.Error())
		}

		resp := &PostInteractionResponse{
			Status:        outcome.Status,
			InteractionID: req.InteractionID,
		}
		if outcome.Notarized != nil {
			resp.TransactionIntentHash = outcome.Notarized.IntentHash
		}
		status := http.StatusOK
		if outcome.Status == pipeline.StatusNeedsInteraction {
			status = http.StatusAccepted
		}
		return c.JSON(status, resp)
	}
}
