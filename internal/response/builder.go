package response

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/notary"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

// ChallengeSigner 用实体密钥对登录质询哈希签名
type ChallengeSigner interface {
	SignChallenge(ctx context.Context, hash []byte, entity *wallet.SigningEntity) (*interaction.AuthProof, error)
}

// AuthorizedPayload 已授权请求的成功响应输入
type AuthorizedPayload struct {
	Persona            *wallet.SigningEntity
	OngoingAccounts    []*wallet.SigningEntity
	OneTimeAccounts    []*wallet.SigningEntity
	OngoingPersonaData *wallet.PersonaData
	OneTimePersonaData *wallet.PersonaData
}

// Builder 把授权结果组装为发回 dApp 的响应。
// 携带质询的子请求需要逐实体签名证明。
type Builder struct {
	signer ChallengeSigner
}

// NewBuilder 创建响应组装器
func NewBuilder(signer ChallengeSigner) *Builder {
	return &Builder{signer: signer}
}

// BuildAuthorizedSuccess 组装已授权请求的成功响应。
// 任一质询签名失败则整个响应失败，不发送部分证明。
func (b *Builder) BuildAuthorizedSuccess(ctx context.Context, req *interaction.Request, payload AuthorizedPayload) (*interaction.Response, error) {
	if payload.Persona == nil {
		return nil, errors.New("authorized response requires a persona")
	}

	items := &interaction.ResponseItems{Kind: interaction.KindAuthorized}

	authItem := &interaction.AuthResponseItem{
		Mode: req.Auth.Mode,
		Persona: interaction.ResponsePersona{
			IdentityAddress: payload.Persona.Address,
			Label:           payload.Persona.Label,
		},
	}
	if req.Auth.Mode == interaction.AuthLoginWithChallenge {
		proof, err := b.signChallenge(ctx, req, req.Auth.Challenge, payload.Persona)
		if err != nil {
			return nil, err
		}
		authItem.Challenge = req.Auth.Challenge
		authItem.Proof = proof
	}
	items.Auth = authItem

	if req.OngoingAccounts != nil {
		item, err := b.accountsItem(ctx, req, req.OngoingAccounts, payload.OngoingAccounts)
		if err != nil {
			return nil, err
		}
		items.OngoingAccounts = item
	}
	if req.OneTimeAccounts != nil {
		item, err := b.accountsItem(ctx, req, req.OneTimeAccounts, payload.OneTimeAccounts)
		if err != nil {
			return nil, err
		}
		items.OneTimeAccounts = item
	}
	if req.OngoingPersonaData != nil {
		items.OngoingPersonaData = personaDataItem(payload.OngoingPersonaData)
	}
	if req.OneTimePersonaData != nil {
		items.OneTimePersonaData = personaDataItem(payload.OneTimePersonaData)
	}

	return interaction.NewSuccessResponse(req.InteractionID, items), nil
}

// BuildUnauthorizedSuccess 组装未授权请求的成功响应（仅一次性子请求）
func (b *Builder) BuildUnauthorizedSuccess(ctx context.Context, req *interaction.Request, accounts []*wallet.SigningEntity, personaData *wallet.PersonaData) (*interaction.Response, error) {
	items := &interaction.ResponseItems{Kind: interaction.KindUnauthorized}
	if req.OneTimeAccounts != nil {
		item, err := b.accountsItem(ctx, req, req.OneTimeAccounts, accounts)
		if err != nil {
			return nil, err
		}
		items.OneTimeAccounts = item
	}
	if req.OneTimePersonaData != nil {
		items.OneTimePersonaData = personaDataItem(personaData)
	}
	return interaction.NewSuccessResponse(req.InteractionID, items), nil
}

// BuildTransactionSuccess 组装交易请求的成功响应
func (b *Builder) BuildTransactionSuccess(req *interaction.Request, intentHash string) *interaction.Response {
	return interaction.NewSuccessResponse(req.InteractionID, &interaction.ResponseItems{
		Kind: interaction.KindTransaction,
		Send: &interaction.SendTransactionResponseItem{TransactionIntentHash: intentHash},
	})
}

// BuildFailure 组装失败响应
func (b *Builder) BuildFailure(req *interaction.Request, errorType interaction.DappErrorType, message string) *interaction.Response {
	return interaction.NewFailureResponse(req.InteractionID, errorType, message)
}

// accountsItem 组装账户子响应。携带质询时为每个账户出具所有权证明，
// 证明要么覆盖全部账户要么整体失败。
func (b *Builder) accountsItem(ctx context.Context, req *interaction.Request, item *interaction.AccountsItem, accounts []*wallet.SigningEntity) (*interaction.AccountsResponseItem, error) {
	out := &interaction.AccountsResponseItem{
		Accounts: make([]interaction.WalletAccount, 0, len(accounts)),
	}
	for _, account := range accounts {
		out.Accounts = append(out.Accounts, interaction.WalletAccount{
			Address:      account.Address,
			Label:        account.Label,
			AppearanceID: account.AppearanceID,
		})
	}
	if len(item.Challenge) == 0 {
		return out, nil
	}

	out.Challenge = item.Challenge
	out.Proofs = make([]interaction.AccountProof, 0, len(accounts))
	for _, account := range accounts {
		proof, err := b.signChallenge(ctx, req, item.Challenge, account)
		if err != nil {
			return nil, err
		}
		out.Proofs = append(out.Proofs, interaction.AccountProof{
			AccountAddress: account.Address,
			Proof:          *proof,
		})
	}
	return out, nil
}

func (b *Builder) signChallenge(ctx context.Context, req *interaction.Request, challenge []byte, entity *wallet.SigningEntity) (*interaction.AuthProof, error) {
	hash, err := notary.AuthChallengeHash(challenge, req.Metadata.DappDefinitionAddress, req.Metadata.Origin)
	if err != nil {
		return nil, &interaction.PrepareTransactionError{Kind: interaction.PrepareFailedToSignAuthChallenge, Cause: err}
	}
	proof, err := b.signer.SignChallenge(ctx, hash, entity)
	if err != nil {
		return nil, &interaction.PrepareTransactionError{Kind: interaction.PrepareFailedToSignAuthChallenge, Cause: err}
	}
	return proof, nil
}

func personaDataItem(data *wallet.PersonaData) *interaction.PersonaDataResponseItem {
	if data == nil {
		return nil
	}
	return &interaction.PersonaDataResponseItem{
		Name:           data.Name,
		EmailAddresses: data.EmailAddresses,
		PhoneNumbers:   data.PhoneNumbers,
	}
}
