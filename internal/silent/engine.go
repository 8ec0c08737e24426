package silent

import (
	"context"

	"github.com/dropbox/godropbox/time2"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/metrics"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/response"
	"github.com/kashguard/go-wallet-connect/internal/verify"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

// Engine 静默复用授权。请求引用已知身份且仅包含持续授权子请求时，
// 直接用既有授权应答，不打扰用户。
//
// 两个终态错误含义不同：ErrInvalidPersona 在返回前已派发失败响应；
// ErrNotPossibleAutomatically 不派发任何响应，调用方回落到交互式流程。
type Engine struct {
	store      relationship.Store
	resolver   *wallet.Resolver
	profile    wallet.ProfileReader
	builder    *response.Builder
	dispatcher *response.Dispatcher
	clock      time2.Clock
}

// NewEngine 创建静默授权引擎
func NewEngine(
	store relationship.Store,
	resolver *wallet.Resolver,
	profile wallet.ProfileReader,
	builder *response.Builder,
	dispatcher *response.Dispatcher,
	clock time2.Clock,
) *Engine {
	return &Engine{
		store:      store,
		resolver:   resolver,
		profile:    profile,
		builder:    builder,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// Authorize 尝试静默授权。成功时响应已派发、最近登录时间已刷新；
// 取消或失败时不留下任何部分状态。
func (e *Engine) Authorize(ctx context.Context, verified *verify.VerifiedRequest) (*response.Ack, error) {
	req := verified.Request

	// 1. 结构守卫：usePersona 认证、仅持续授权子请求、无重置、无质询
	if req.Kind != interaction.KindAuthorized || req.Auth == nil ||
		req.Auth.Mode != interaction.AuthUsePersona || !req.HasOngoingItemsOnly() {
		return nil, e.fallback(ctx, req, "request shape requires user interaction")
	}
	if req.NeedSignatures() {
		return nil, e.fallback(ctx, req, "challenge proofs require user interaction")
	}

	// 2. 身份守卫：关系存在且包含该身份，身份仍在钱包档案中
	rel, err := e.store.Get(ctx, req.Metadata.DappDefinitionAddress, req.Metadata.NetworkID)
	if err != nil {
		if err == relationship.ErrNotFound {
			return nil, e.invalidPersona(ctx, req, "no authorized relationship for dApp")
		}
		return nil, err
	}
	authorized := rel.Persona(req.Auth.IdentityAddress)
	if authorized == nil {
		return nil, e.invalidPersona(ctx, req, "persona was never authorized for dApp")
	}
	persona, err := e.profile.PersonaOnCurrentNetwork(ctx, req.Auth.IdentityAddress)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, e.invalidPersona(ctx, req, "persona no longer exists in wallet")
	}

	payload := response.AuthorizedPayload{Persona: persona}

	// 3. 账户守卫：既有授权必须满足请求数量；已删除的账户悄悄跳过，
	// 只要还剩至少一个存活账户就按现状应答，全部消失才回落
	if req.OngoingAccounts != nil {
		addresses := authorized.AccountAddressesForRequest(req.OngoingAccounts.NumberOfAccounts)
		if addresses == nil {
			return nil, e.fallback(ctx, req, "granted accounts do not satisfy request")
		}
		accounts, err := e.resolver.LiveAccounts(ctx, addresses)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, e.fallback(ctx, req, "granted accounts no longer exist")
		}
		payload.OngoingAccounts = accounts
	}

	// 4. 个人数据守卫：授权字段与档案字段都必须仍然足够
	if req.OngoingPersonaData != nil {
		required := req.OngoingPersonaData.RequiredFields()
		if !authorized.HasAllDataFields(required) {
			return nil, e.fallback(ctx, req, "granted persona data does not satisfy request")
		}
		data := persona.PersonaData.FieldsOfKinds(required)
		if data == nil {
			return nil, e.fallback(ctx, req, "persona data fields no longer exist")
		}
		payload.OngoingPersonaData = data
	}

	// 取消检查：派发之前随时可以无副作用地放弃
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5. 组装并派发成功响应
	resp, err := e.builder.BuildAuthorizedSuccess(ctx, req, payload)
	if err != nil {
		return nil, err
	}
	ack, err := e.dispatcher.Dispatch(ctx, req.Channel, resp)
	if err != nil {
		return nil, err
	}

	// 6. 派发成功后刷新最近登录时间；失败只记录，不影响已派发的响应
	if err := e.store.BumpLastLogin(ctx, req.Metadata.DappDefinitionAddress, req.Metadata.NetworkID,
		req.Auth.IdentityAddress, e.clock.Now()); err != nil {
		log.Error().Err(err).
			Str("interaction_id", req.InteractionID).
			Msg("Failed to bump last login after silent authorization")
	}

	metrics.SilentAuthorizations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info().
		Str("interaction_id", req.InteractionID).
		Str("identity_address", req.Auth.IdentityAddress).
		Msg("Request authorized silently")
	return ack, nil
}

// invalidPersona 派发失败响应并返回 ErrInvalidPersona
func (e *Engine) invalidPersona(ctx context.Context, req *interaction.Request, reason string) error {
	metrics.SilentAuthorizations.WithLabelValues(metrics.OutcomeFailure).Inc()
	log.Warn().
		Str("interaction_id", req.InteractionID).
		Str("reason", reason).
		Msg("Silent authorization rejected")

	resp := e.builder.BuildFailure(req, interaction.DappErrorInvalidPersona, reason)
	if _, err := e.dispatcher.Dispatch(ctx, req.Channel, resp); err != nil {
		log.Error().Err(err).
			Str("interaction_id", req.InteractionID).
			Msg("Failed to dispatch invalid persona failure")
	}
	return interaction.ErrInvalidPersona
}

// fallback 不派发任何响应，交由交互式流程接管
func (e *Engine) fallback(ctx context.Context, req *interaction.Request, reason string) error {
	metrics.SilentAuthorizations.WithLabelValues(metrics.OutcomeFallback).Inc()
	log.Debug().
		Str("interaction_id", req.InteractionID).
		Str("reason", reason).
		Msg("Silent authorization not possible")
	return interaction.ErrNotPossibleAutomatically
}
