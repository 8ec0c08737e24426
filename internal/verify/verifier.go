package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/gateway"
	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/metrics"
	"github.com/kashguard/go-wallet-connect/internal/response"
)

// VerifiedRequest 通过全部校验的请求，校验之后才允许进入授权或公证
type VerifiedRequest struct {
	Request *interaction.Request
	// dApp 定义账户的展示名，空字符串表示未设置
	DappDisplayName string
}

// Verifier 请求校验器。校验失败时自行派发失败响应，
// 消费掉该 interactionId，调用方不再发送任何响应。
type Verifier struct {
	state      gateway.StateClient
	wellKnown  gateway.WellKnownFetcher
	builder    *response.Builder
	dispatcher *response.Dispatcher

	networkID     uint8
	developerMode bool
}

// NewVerifier 创建请求校验器
func NewVerifier(
	state gateway.StateClient,
	wellKnown gateway.WellKnownFetcher,
	builder *response.Builder,
	dispatcher *response.Dispatcher,
	networkID uint8,
	developerMode bool,
) *Verifier {
	return &Verifier{
		state:         state,
		wellKnown:     wellKnown,
		builder:       builder,
		dispatcher:    dispatcher,
		networkID:     networkID,
		developerMode: developerMode,
	}
}

// Verify 校验请求。顺序：网络、结构、dApp 地址语法、双向链接。
// 返回错误时失败响应已派发（或派发已尽力），调用方只做日志。
func (v *Verifier) Verify(ctx context.Context, req *interaction.Request) (*VerifiedRequest, error) {
	if req.Metadata.NetworkID != v.networkID {
		return nil, v.fail(ctx, req, &interaction.VerificationError{
			Kind: interaction.VerificationWrongNetwork,
			Detail: fmt.Sprintf("request is for network %d, wallet is on network %d",
				req.Metadata.NetworkID, v.networkID),
		})
	}

	if !req.Valid() {
		return nil, v.fail(ctx, req, &interaction.VerificationError{
			Kind:   interaction.VerificationInvalidRequest,
			Detail: "request item quantities are invalid",
		})
	}

	if !validDappDefinitionAddress(req.Metadata.DappDefinitionAddress, v.networkID) {
		return nil, v.fail(ctx, req, &interaction.VerificationError{
			Kind:   interaction.VerificationInvalidRequest,
			Detail: "dApp definition address is malformed for this network",
		})
	}

	// 钱包内部请求与开发者模式跳过双向链接校验
	if req.IsInternal() || v.developerMode {
		metrics.RequestsVerified.WithLabelValues(metrics.OutcomeSuccess).Inc()
		return &VerifiedRequest{Request: req}, nil
	}

	displayName, verr := v.verifyTwoWayLink(ctx, req)
	if verr != nil {
		return nil, v.fail(ctx, req, verr)
	}

	metrics.RequestsVerified.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Debug().
		Str("interaction_id", req.InteractionID).
		Str("dapp_definition_address", req.Metadata.DappDefinitionAddress).
		Msg("Request verified")
	return &VerifiedRequest{Request: req, DappDisplayName: displayName}, nil
}

// verifyTwoWayLink 双向链接校验：
// 链上实体必须是 dApp 定义账户且宣称请求 origin；
// origin 的 well-known 清单必须列出该 dApp 定义地址。
// 强制绕过缓存，取消宣称必须立即生效。
func (v *Verifier) verifyTwoWayLink(ctx context.Context, req *interaction.Request) (string, *interaction.VerificationError) {
	if !strings.HasPrefix(req.Metadata.Origin, "https://") {
		return "", &interaction.VerificationError{
			Kind:   interaction.VerificationUnknownWebsite,
			Detail: "origin is not an https URL",
		}
	}

	details, err := v.state.EntityDetails(ctx, []string{req.Metadata.DappDefinitionAddress}, true)
	if err != nil || len(details) == 0 {
		return "", &interaction.VerificationError{
			Kind:   interaction.VerificationUnknownWebsite,
			Detail: "failed to fetch dApp definition metadata",
		}
	}
	entity := details[0]

	if !entity.IsDappDefinition() {
		return "", &interaction.VerificationError{Kind: interaction.VerificationWrongAccountType}
	}
	if !entity.ClaimsWebsite(req.Metadata.Origin) {
		return "", &interaction.VerificationError{
			Kind:   interaction.VerificationUnknownWebsite,
			Detail: "dApp definition does not claim the request origin",
		}
	}

	claimed, err := v.wellKnown.ClaimedDefinitions(ctx, req.Metadata.Origin)
	if err != nil {
		return "", &interaction.VerificationError{
			Kind:   interaction.VerificationUnknownWebsite,
			Detail: "failed to fetch well-known file from origin",
		}
	}
	for _, address := range claimed {
		if address == req.Metadata.DappDefinitionAddress {
			return entity.Name, nil
		}
	}
	return "", &interaction.VerificationError{
		Kind:   interaction.VerificationUnknownWebsite,
		Detail: "origin does not claim the dApp definition address",
	}
}

// fail 派发失败响应并返回校验错误。
// 内部请求没有回传通道，只记录不派发。
func (v *Verifier) fail(ctx context.Context, req *interaction.Request, verr *interaction.VerificationError) error {
	metrics.RequestsVerified.WithLabelValues(metrics.OutcomeFailure).Inc()
	log.Warn().
		Str("interaction_id", req.InteractionID).
		Str("kind", verr.Kind.String()).
		Msg("Request verification failed")

	if !req.IsInternal() {
		resp := v.builder.BuildFailure(req, verr.DappErrorType(), verr.Message())
		if _, err := v.dispatcher.Dispatch(ctx, req.Channel, resp); err != nil {
			log.Error().Err(err).
				Str("interaction_id", req.InteractionID).
				Msg("Failed to dispatch verification failure")
		}
	}
	return verr
}

// validDappDefinitionAddress dApp 定义地址的语法校验：
// 主网前缀 account_rdx，其余网络 account_tdx，且地址体为 bech32 字符集
func validDappDefinitionAddress(address string, networkID uint8) bool {
	var prefix string
	if networkID == 1 {
		prefix = "account_rdx"
	} else {
		prefix = "account_tdx"
	}
	if !strings.HasPrefix(address, prefix) {
		return false
	}
	body := address[len("account_"):]
	if len(body) < 12 {
		return false
	}
	for _, r := range body {
		if !strings.ContainsRune("qpzry9x8gf2tvdw0s3jn54khce6mua7l_10", r) {
			return false
		}
	}
	return true
}
