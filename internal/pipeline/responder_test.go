package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/response"
	"github.com/kashguard/go-wallet-connect/internal/verify"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

func newResponderFixture() (*Responder, *memoryStore, *captureLink) {
	store := newMemoryStore()
	link := &captureLink{}
	builder := response.NewBuilder(nil)
	dispatcher := response.NewDispatcher(link, noopBridge{})
	clock := time2.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return NewResponder(store, builder, dispatcher, clock), store, link
}

func verifiedUsePersona() *verify.VerifiedRequest {
	return &verify.VerifiedRequest{
		Request:         usePersonaRequest(),
		DappDisplayName: "Radix Dashboard",
	}
}

func TestRespondAuthorizedPersistsGrant(t *testing.T) {
	responder, store, link := newResponderFixture()

	payload := response.AuthorizedPayload{
		Persona: &wallet.SigningEntity{Kind: wallet.EntityPersona, Address: testIdentity, Label: "Sajjon"},
		OngoingAccounts: []*wallet.SigningEntity{
			{Kind: wallet.EntityAccount, Address: testAccount, Label: "Main"},
		},
	}
	ack, err := responder.RespondAuthorized(context.Background(), verifiedUsePersona(), payload)
	require.NoError(t, err)
	require.NotNil(t, ack)

	// 1. 成功响应已派发
	require.Len(t, link.responses, 1)
	assert.True(t, link.responses[0].IsSuccess())

	// 2. 授权关系已持久化：展示名、授权账户、登录时间来自时钟
	rel, err := store.Get(context.Background(), testDappAddress, 2)
	require.NoError(t, err)
	assert.Equal(t, "Radix Dashboard", rel.DisplayName)
	persona := rel.Persona(testIdentity)
	require.NotNil(t, persona)
	require.NotNil(t, persona.SharedAccounts)
	assert.Equal(t, []string{testAccount}, persona.SharedAccounts.AccountAddresses)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), persona.LastLogin)
}

func TestRespondAuthorizedUpdatesExistingRelationship(t *testing.T) {
	responder, store, _ := newResponderFixture()
	store.rels[testDappAddress] = &relationship.Relationship{
		DappDefinitionAddress: testDappAddress,
		NetworkID:             2,
		DisplayName:           "Radix Dashboard",
		Personas: []relationship.AuthorizedPersona{
			{IdentityAddress: "identity-other"},
		},
	}

	payload := response.AuthorizedPayload{
		Persona: &wallet.SigningEntity{Kind: wallet.EntityPersona, Address: testIdentity},
	}
	verified := verifiedUsePersona()
	verified.Request.OngoingAccounts = nil
	_, err := responder.RespondAuthorized(context.Background(), verified, payload)
	require.NoError(t, err)

	rel, err := store.Get(context.Background(), testDappAddress, 2)
	require.NoError(t, err)
	// 既有身份保留，新身份追加
	assert.Len(t, rel.Personas, 2)
}

func TestRespondUnauthorizedDoesNotPersist(t *testing.T) {
	responder, store, link := newResponderFixture()

	req := baseRequest(interaction.KindUnauthorized)
	req.OneTimeAccounts = &interaction.AccountsItem{
		NumberOfAccounts: interaction.NumberOfValues{Quantity: 1, Quantifier: interaction.QuantifierExactly},
	}
	verified := &verify.VerifiedRequest{Request: req}

	_, err := responder.RespondUnauthorized(context.Background(), verified,
		[]*wallet.SigningEntity{{Kind: wallet.EntityAccount, Address: testAccount}}, nil)
	require.NoError(t, err)

	require.Len(t, link.responses, 1)
	assert.True(t, link.responses[0].IsSuccess())
	assert.Empty(t, store.rels)
}

func TestRespondRejection(t *testing.T) {
	responder, store, link := newResponderFixture()

	ack, err := responder.RespondRejection(context.Background(), verifiedUsePersona())
	require.NoError(t, err)
	require.NotNil(t, ack)

	require.Len(t, link.responses, 1)
	resp := link.responses[0]
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, interaction.DappErrorRejectedByUser, resp.Error)
	assert.Empty(t, store.rels)
}
