package response

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

type mockChallengeSigner struct {
	failFor map[string]error
	signed  []string
}

func (m *mockChallengeSigner) SignChallenge(ctx context.Context, hash []byte, entity *wallet.SigningEntity) (*interaction.AuthProof, error) {
	if err, ok := m.failFor[entity.Address]; ok {
		return nil, err
	}
	m.signed = append(m.signed, entity.Address)
	return &interaction.AuthProof{
		PublicKey: entity.Factor.PublicKey,
		Curve:     "curve25519",
		Signature: append([]byte("sig-"), entity.Address...),
	}, nil
}

func account(address string) *wallet.SigningEntity {
	return &wallet.SigningEntity{
		Kind:    wallet.EntityAccount,
		Address: address,
		Label:   "Account " + address,
		Factor:  wallet.FactorInstance{PublicKey: []byte("pk-" + address)},
	}
}

func persona(address string) *wallet.SigningEntity {
	return &wallet.SigningEntity{Kind: wallet.EntityPersona, Address: address, Label: "Persona"}
}

func loginRequest(challenge []byte) *interaction.Request {
	return &interaction.Request{
		InteractionID: "interaction-1",
		Kind:          interaction.KindAuthorized,
		Metadata: interaction.Metadata{
			NetworkID:             2,
			Origin:                "https://dashboard.rdx.works",
			DappDefinitionAddress: "account_tdx_2_12x4",
		},
		Auth: &interaction.AuthItem{Mode: interaction.AuthLoginWithChallenge, Challenge: challenge},
	}
}

func TestBuildAuthorizedSuccessWithChallenge(t *testing.T) {
	challenge := make([]byte, 32)
	req := loginRequest(challenge)
	req.OngoingAccounts = &interaction.AccountsItem{
		NumberOfAccounts: interaction.NumberOfValues{Quantity: 2, Quantifier: interaction.QuantifierExactly},
		Challenge:        challenge,
	}

	signer := &mockChallengeSigner{}
	builder := NewBuilder(signer)
	resp, err := builder.BuildAuthorizedSuccess(context.Background(), req, AuthorizedPayload{
		Persona:         persona("identity-1"),
		OngoingAccounts: []*wallet.SigningEntity{account("account-1"), account("account-2")},
	})
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())

	// 1. 认证子响应携带身份与质询证明
	require.NotNil(t, resp.Items.Auth)
	assert.Equal(t, "identity-1", resp.Items.Auth.Persona.IdentityAddress)
	require.NotNil(t, resp.Items.Auth.Proof)

	// 2. 每个账户都有所有权证明
	require.NotNil(t, resp.Items.OngoingAccounts)
	require.Len(t, resp.Items.OngoingAccounts.Accounts, 2)
	require.Len(t, resp.Items.OngoingAccounts.Proofs, 2)
	assert.Equal(t, "account-1", resp.Items.OngoingAccounts.Proofs[0].AccountAddress)

	// 3. 身份 + 两个账户各签一次
	assert.Equal(t, []string{"identity-1", "account-1", "account-2"}, signer.signed)
}

func TestBuildAuthorizedSuccessProofFailureIsTotal(t *testing.T) {
	challenge := make([]byte, 32)
	req := loginRequest(challenge)
	req.OngoingAccounts = &interaction.AccountsItem{
		NumberOfAccounts: interaction.NumberOfValues{Quantity: 2, Quantifier: interaction.QuantifierExactly},
		Challenge:        challenge,
	}

	// 第二个账户签名失败：整个响应失败，不发送部分证明
	signer := &mockChallengeSigner{failFor: map[string]error{"account-2": errors.New("key unavailable")}}
	builder := NewBuilder(signer)
	resp, err := builder.BuildAuthorizedSuccess(context.Background(), req, AuthorizedPayload{
		Persona:         persona("identity-1"),
		OngoingAccounts: []*wallet.SigningEntity{account("account-1"), account("account-2")},
	})
	require.Error(t, err)
	assert.Nil(t, resp)

	var prepareErr *interaction.PrepareTransactionError
	require.True(t, errors.As(err, &prepareErr))
	assert.Equal(t, interaction.PrepareFailedToSignAuthChallenge, prepareErr.Kind)
	assert.Equal(t, interaction.DappErrorFailedToSignAuthChallenge, interaction.ErrorTypeOf(prepareErr))
}

func TestBuildAuthorizedSuccessUsePersonaNoProof(t *testing.T) {
	req := loginRequest(nil)
	req.Auth = &interaction.AuthItem{Mode: interaction.AuthUsePersona, IdentityAddress: "identity-1"}
	req.OngoingAccounts = &interaction.AccountsItem{
		NumberOfAccounts: interaction.NumberOfValues{Quantity: 1, Quantifier: interaction.QuantifierAtLeast},
	}

	signer := &mockChallengeSigner{}
	builder := NewBuilder(signer)
	resp, err := builder.BuildAuthorizedSuccess(context.Background(), req, AuthorizedPayload{
		Persona:         persona("identity-1"),
		OngoingAccounts: []*wallet.SigningEntity{account("account-1")},
	})
	require.NoError(t, err)

	// 无质询则无证明，也无需签名
	assert.Nil(t, resp.Items.Auth.Proof)
	assert.Nil(t, resp.Items.OngoingAccounts.Proofs)
	assert.Empty(t, signer.signed)
}

func TestBuildAuthorizedSuccessRequiresPersona(t *testing.T) {
	builder := NewBuilder(&mockChallengeSigner{})
	_, err := builder.BuildAuthorizedSuccess(context.Background(), loginRequest(make([]byte, 32)), AuthorizedPayload{})
	require.Error(t, err)
}

func TestBuildUnauthorizedSuccess(t *testing.T) {
	req := &interaction.Request{
		InteractionID: "interaction-2",
		Kind:          interaction.KindUnauthorized,
		Metadata: interaction.Metadata{
			Origin:                "https://dashboard.rdx.works",
			DappDefinitionAddress: "account_tdx_2_12x4",
		},
		OneTimeAccounts: &interaction.AccountsItem{
			NumberOfAccounts: interaction.NumberOfValues{Quantity: 1, Quantifier: interaction.QuantifierExactly},
		},
		OneTimePersonaData: &interaction.PersonaDataItem{IsRequestingName: true},
	}

	builder := NewBuilder(&mockChallengeSigner{})
	resp, err := builder.BuildUnauthorizedSuccess(context.Background(), req,
		[]*wallet.SigningEntity{account("account-1")},
		&wallet.PersonaData{Name: &interaction.PersonaDataName{GivenNames: "Alex", FamilyName: "Cyon"}})
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())

	assert.Equal(t, interaction.KindUnauthorized, resp.Items.Kind)
	require.Len(t, resp.Items.OneTimeAccounts.Accounts, 1)
	require.NotNil(t, resp.Items.OneTimePersonaData)
	assert.Equal(t, "Alex", resp.Items.OneTimePersonaData.Name.GivenNames)
}

func TestBuildUnauthorizedSuccessWithChallengeProofs(t *testing.T) {
	challenge := make([]byte, 32)
	challenge[0] = 0xab
	req := &interaction.Request{
		InteractionID: "interaction-2",
		Kind:          interaction.KindUnauthorized,
		Metadata: interaction.Metadata{
			Origin:                "https://dashboard.rdx.works",
			DappDefinitionAddress: "account_tdx_2_12x4",
		},
		OneTimeAccounts: &interaction.AccountsItem{
			NumberOfAccounts: interaction.NumberOfValues{Quantity: 2, Quantifier: interaction.QuantifierExactly},
			Challenge:        challenge,
		},
	}

	signer := &mockChallengeSigner{}
	builder := NewBuilder(signer)
	resp, err := builder.BuildUnauthorizedSuccess(context.Background(), req,
		[]*wallet.SigningEntity{account("account-1"), account("account-2")}, nil)
	require.NoError(t, err)

	// 每个选中账户都有所有权证明，公钥与账户一一对应
	item := resp.Items.OneTimeAccounts
	require.NotNil(t, item)
	require.Len(t, item.Proofs, 2)
	assert.Equal(t, challenge, item.Challenge)
	assert.Equal(t, "account-1", item.Proofs[0].AccountAddress)
	assert.Equal(t, []byte("pk-account-1"), item.Proofs[0].Proof.PublicKey)
	assert.Equal(t, "account-2", item.Proofs[1].AccountAddress)
	assert.Equal(t, []byte("pk-account-2"), item.Proofs[1].Proof.PublicKey)
}

func TestBuildTransactionSuccessAndFailure(t *testing.T) {
	req := &interaction.Request{InteractionID: "interaction-3", Kind: interaction.KindTransaction}
	builder := NewBuilder(&mockChallengeSigner{})

	resp := builder.BuildTransactionSuccess(req, "deadbeef")
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "deadbeef", resp.Items.Send.TransactionIntentHash)

	failure := builder.BuildFailure(req, interaction.DappErrorFailedToSignTransaction, "signing failed")
	assert.False(t, failure.IsSuccess())
	assert.Equal(t, interaction.DappErrorFailedToSignTransaction, failure.Error)
	assert.Equal(t, "interaction-3", failure.InteractionID)
}
