package pipeline

import (
	"context"

	"github.com/dropbox/godropbox/time2"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/response"
	"github.com/kashguard/go-wallet-connect/internal/verify"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

// Responder 完成交互式流程：用户选定身份与账户后，
// 组装响应、派发、并把授权写回关系存储。
type Responder struct {
	store      relationship.Store
	builder    *response.Builder
	dispatcher *response.Dispatcher
	clock      time2.Clock
}

// NewResponder 创建交互式流程应答器
func NewResponder(store relationship.Store, builder *response.Builder, dispatcher *response.Dispatcher, clock time2.Clock) *Responder {
	return &Responder{
		store:      store,
		builder:    builder,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// RespondAuthorized 应答已授权请求。质询签名在组装阶段完成，
// 任一签名失败则派发失败响应。派发成功后才持久化授权关系。
func (r *Responder) RespondAuthorized(ctx context.Context, verified *verify.VerifiedRequest, payload response.AuthorizedPayload) (*response.Ack, error) {
	req := verified.Request

	resp, err := r.builder.BuildAuthorizedSuccess(ctx, req, payload)
	if err != nil {
		return nil, r.failAndDispatch(ctx, req, err)
	}
	ack, err := r.dispatcher.Dispatch(ctx, req.Channel, resp)
	if err != nil {
		return nil, err
	}

	if err := r.persistGrant(ctx, verified, payload); err != nil {
		// 响应已出门，持久化失败只记录
		log.Error().Err(err).
			Str("interaction_id", req.InteractionID).
			Msg("Failed to persist authorized relationship")
	}
	return ack, nil
}

// RespondUnauthorized 应答未授权请求（仅一次性子请求，不持久化）
func (r *Responder) RespondUnauthorized(ctx context.Context, verified *verify.VerifiedRequest, accounts []*wallet.SigningEntity, personaData *wallet.PersonaData) (*response.Ack, error) {
	req := verified.Request

	resp, err := r.builder.BuildUnauthorizedSuccess(ctx, req, accounts, personaData)
	if err != nil {
		return nil, r.failAndDispatch(ctx, req, err)
	}
	return r.dispatcher.Dispatch(ctx, req.Channel, resp)
}

// RespondRejection 用户拒绝请求
func (r *Responder) RespondRejection(ctx context.Context, verified *verify.VerifiedRequest) (*response.Ack, error) {
	req := verified.Request
	resp := r.builder.BuildFailure(req, interaction.DappErrorRejectedByUser, "user rejected the request")
	return r.dispatcher.Dispatch(ctx, req.Channel, resp)
}

// persistGrant 把本次交互授予的账户与字段写回关系存储
func (r *Responder) persistGrant(ctx context.Context, verified *verify.VerifiedRequest, payload response.AuthorizedPayload) error {
	req := verified.Request
	if payload.Persona == nil {
		return nil
	}

	persona := relationship.AuthorizedPersona{
		IdentityAddress: payload.Persona.Address,
		LastLogin:       r.clock.Now().UTC(),
	}
	if req.OngoingAccounts != nil {
		addresses := make([]string, 0, len(payload.OngoingAccounts))
		for _, account := range payload.OngoingAccounts {
			addresses = append(addresses, account.Address)
		}
		persona.SharedAccounts = &relationship.SharedAccounts{
			Request:          req.OngoingAccounts.NumberOfAccounts,
			AccountAddresses: addresses,
		}
	}
	if req.OngoingPersonaData != nil && payload.OngoingPersonaData != nil {
		for _, field := range req.OngoingPersonaData.RequiredFields() {
			persona.SharedPersonaData = append(persona.SharedPersonaData, relationship.GrantedField{
				Kind:  field.Kind,
				Count: grantedFieldCount(payload.OngoingPersonaData, field.Kind),
			})
		}
	}

	rel, err := r.store.Get(ctx, req.Metadata.DappDefinitionAddress, req.Metadata.NetworkID)
	if err != nil {
		if err != relationship.ErrNotFound {
			return err
		}
		rel = &relationship.Relationship{
			DappDefinitionAddress: req.Metadata.DappDefinitionAddress,
			NetworkID:             req.Metadata.NetworkID,
			DisplayName:           verified.DappDisplayName,
		}
	}
	rel.UpsertPersona(persona)
	return r.store.Upsert(ctx, rel)
}

func (r *Responder) failAndDispatch(ctx context.Context, req *interaction.Request, cause error) error {
	resp := r.builder.BuildFailure(req, interaction.ErrorTypeOf(cause), cause.Error())
	if _, err := r.dispatcher.Dispatch(ctx, req.Channel, resp); err != nil {
		log.Error().Err(err).
			Str("interaction_id", req.InteractionID).
			Msg("Failed to dispatch response failure")
	}
	return cause
}

func grantedFieldCount(data *wallet.PersonaData, kind interaction.FieldKind) int {
	switch kind {
	case interaction.FieldEmailAddress:
		return len(data.EmailAddresses)
	case interaction.FieldPhoneNumber:
		return len(data.PhoneNumbers)
	default:
		if data.Name != nil {
			return 1
		}
		return 0
	}
}
