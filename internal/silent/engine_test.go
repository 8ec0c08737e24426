package silent

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/response"
	"github.com/kashguard/go-wallet-connect/internal/verify"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

const (
	testDappAddress = "account_tdx_2_12x4"
	testIdentity    = "identity_tdx_2_122m"
)

type mockStore struct {
	rel       *relationship.Relationship
	getErr    error
	bumpCalls []time.Time
	bumpErr   error
}

func (m *mockStore) Get(ctx context.Context, dapp string, networkID uint8) (*relationship.Relationship, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.rel == nil {
		return nil, relationship.ErrNotFound
	}
	return m.rel, nil
}

func (m *mockStore) Upsert(ctx context.Context, rel *relationship.Relationship) error { return nil }

func (m *mockStore) UpdatePersona(ctx context.Context, dapp string, networkID uint8, persona relationship.AuthorizedPersona) error {
	return nil
}

func (m *mockStore) BumpLastLogin(ctx context.Context, dapp string, networkID uint8, identity string, at time.Time) error {
	m.bumpCalls = append(m.bumpCalls, at)
	return m.bumpErr
}

func (m *mockStore) DeletePersona(ctx context.Context, dapp string, networkID uint8, identity string) error {
	return nil
}

func (m *mockStore) Delete(ctx context.Context, dapp string, networkID uint8) error { return nil }

func (m *mockStore) ListByPersona(ctx context.Context, networkID uint8, identity string) ([]*relationship.Relationship, error) {
	return nil, nil
}

func (m *mockStore) List(ctx context.Context, networkID uint8) ([]*relationship.Relationship, error) {
	return nil, nil
}

type captureLink struct {
	responses []*interaction.Response
}

func (c *captureLink) Send(ctx context.Context, linkID string, resp *interaction.Response) error {
	c.responses = append(c.responses, resp)
	return nil
}

type noopBridge struct{}

func (noopBridge) Publish(ctx context.Context, sessionID string, resp *interaction.Response) error {
	return nil
}

type fixture struct {
	engine *Engine
	store  *mockStore
	link   *captureLink
	clock  time2.Clock
}

func newFixture(store *mockStore, profile *wallet.InMemoryProfile) *fixture {
	link := &captureLink{}
	clock := time2.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	builder := response.NewBuilder(nil)
	dispatcher := response.NewDispatcher(link, noopBridge{})
	engine := NewEngine(store, wallet.NewResolver(profile), profile, builder, dispatcher, clock)
	return &fixture{engine: engine, store: store, link: link, clock: clock}
}

func grantedProfile(accountAddresses ...string) *wallet.InMemoryProfile {
	profile := wallet.NewInMemoryProfile()
	profile.Register(&wallet.SigningEntity{Kind: wallet.EntityPersona, Address: testIdentity, Label: "Sajjon"})
	for _, address := range accountAddresses {
		profile.Register(&wallet.SigningEntity{Kind: wallet.EntityAccount, Address: address, Label: "Account"})
	}
	return profile
}

func grantedRelationship(accountAddresses ...string) *relationship.Relationship {
	return &relationship.Relationship{
		DappDefinitionAddress: testDappAddress,
		NetworkID:             2,
		Personas: []relationship.AuthorizedPersona{{
			IdentityAddress: testIdentity,
			SharedAccounts: &relationship.SharedAccounts{
				Request:          interaction.NumberOfValues{Quantity: len(accountAddresses), Quantifier: interaction.QuantifierAtLeast},
				AccountAddresses: accountAddresses,
			},
			SharedPersonaData: []relationship.GrantedField{
				{Kind: interaction.FieldName, Count: 1},
			},
		}},
	}
}

func silentRequest(mutate func(*interaction.Request)) *verify.VerifiedRequest {
	req := &interaction.Request{
		InteractionID: "interaction-1",
		Kind:          interaction.KindAuthorized,
		Channel:       interaction.RemoteChannel{Kind: interaction.ChannelLinkConnector, ID: "link-1"},
		Metadata: interaction.Metadata{
			NetworkID:             2,
			Origin:                "https://dashboard.rdx.works",
			DappDefinitionAddress: testDappAddress,
		},
		Auth: &interaction.AuthItem{Mode: interaction.AuthUsePersona, IdentityAddress: testIdentity},
		OngoingAccounts: &interaction.AccountsItem{
			NumberOfAccounts: interaction.NumberOfValues{Quantity: 2, Quantifier: interaction.QuantifierExactly},
		},
	}
	if mutate != nil {
		mutate(req)
	}
	return &verify.VerifiedRequest{Request: req}
}

func TestAuthorizeExactlyTwoOfThree(t *testing.T) {
	store := &mockStore{rel: grantedRelationship("account-1", "account-2", "account-3")}
	f := newFixture(store, grantedProfile("account-1", "account-2", "account-3"))

	ack, err := f.engine.Authorize(context.Background(), silentRequest(nil))
	require.NoError(t, err)
	require.NotNil(t, ack)

	// 1. 成功响应恰好派发一次，exactly 2 取授权顺序的前两个账户
	require.Len(t, f.link.responses, 1)
	resp := f.link.responses[0]
	require.True(t, resp.IsSuccess())
	require.NotNil(t, resp.Items.OngoingAccounts)
	require.Len(t, resp.Items.OngoingAccounts.Accounts, 2)
	assert.Equal(t, "account-1", resp.Items.OngoingAccounts.Accounts[0].Address)
	assert.Equal(t, "account-2", resp.Items.OngoingAccounts.Accounts[1].Address)
	assert.Nil(t, resp.Items.OngoingAccounts.Proofs)

	// 2. 响应身份与请求一致
	assert.Equal(t, testIdentity, resp.Items.Auth.Persona.IdentityAddress)

	// 3. 派发成功后用时钟时间刷新最近登录
	require.Len(t, store.bumpCalls, 1)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), store.bumpCalls[0])
}

func TestAuthorizePartialLiveSetAcceptedAsIs(t *testing.T) {
	// 授权了两个账户，其中一个已从钱包删除。只要还剩存活账户，
	// 按现状静默应答，不回落到交互式流程
	store := &mockStore{rel: grantedRelationship("account-1", "account-2")}
	f := newFixture(store, grantedProfile("account-1"))

	ack, err := f.engine.Authorize(context.Background(), silentRequest(nil))
	require.NoError(t, err)
	require.NotNil(t, ack)

	require.Len(t, f.link.responses, 1)
	resp := f.link.responses[0]
	require.True(t, resp.IsSuccess())
	require.NotNil(t, resp.Items.OngoingAccounts)
	require.Len(t, resp.Items.OngoingAccounts.Accounts, 1)
	assert.Equal(t, "account-1", resp.Items.OngoingAccounts.Accounts[0].Address)
	require.Len(t, store.bumpCalls, 1)
}

func TestAuthorizeUnknownPersonaDispatchesFailure(t *testing.T) {
	tests := []struct {
		name  string
		store *mockStore
	}{
		{"no relationship", &mockStore{}},
		{"persona never authorized", &mockStore{rel: &relationship.Relationship{
			DappDefinitionAddress: testDappAddress,
			NetworkID:             2,
			Personas: []relationship.AuthorizedPersona{
				{IdentityAddress: "identity-other"},
			},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.store, grantedProfile())

			_, err := f.engine.Authorize(context.Background(), silentRequest(nil))
			require.Error(t, err)
			assert.True(t, errors.Is(err, interaction.ErrInvalidPersona))

			// 失败响应已派发，错误码 invalidPersona
			require.Len(t, f.link.responses, 1)
			assert.False(t, f.link.responses[0].IsSuccess())
			assert.Equal(t, interaction.DappErrorInvalidPersona, f.link.responses[0].Error)
			assert.Empty(t, tt.store.bumpCalls)
		})
	}
}

func TestAuthorizePersonaGoneFromWallet(t *testing.T) {
	store := &mockStore{rel: grantedRelationship("account-1", "account-2")}
	profile := wallet.NewInMemoryProfile()
	f := newFixture(store, profile)

	_, err := f.engine.Authorize(context.Background(), silentRequest(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, interaction.ErrInvalidPersona))
	require.Len(t, f.link.responses, 1)
	assert.Equal(t, interaction.DappErrorInvalidPersona, f.link.responses[0].Error)
}

func TestAuthorizeFallbackNeverDispatches(t *testing.T) {
	tests := []struct {
		name   string
		store  *mockStore
		accts  []string
		mutate func(*interaction.Request)
	}{
		{
			name:   "login mode requires interaction",
			store:  &mockStore{rel: grantedRelationship("account-1", "account-2")},
			accts:  []string{"account-1", "account-2"},
			mutate: func(r *interaction.Request) { r.Auth.Mode = interaction.AuthLoginWithChallenge },
		},
		{
			name:   "one-time items require interaction",
			store:  &mockStore{rel: grantedRelationship("account-1", "account-2")},
			accts:  []string{"account-1", "account-2"},
			mutate: func(r *interaction.Request) { r.OneTimeAccounts = &interaction.AccountsItem{} },
		},
		{
			name:   "reset item requires interaction",
			store:  &mockStore{rel: grantedRelationship("account-1", "account-2")},
			accts:  []string{"account-1", "account-2"},
			mutate: func(r *interaction.Request) { r.Reset = &interaction.ResetItem{Accounts: true} },
		},
		{
			name:  "challenge requires interaction",
			store: &mockStore{rel: grantedRelationship("account-1", "account-2")},
			accts: []string{"account-1", "account-2"},
			mutate: func(r *interaction.Request) {
				r.OngoingAccounts.Challenge = make([]byte, 32)
			},
		},
		{
			name:   "granted accounts insufficient",
			store:  &mockStore{rel: grantedRelationship("account-1")},
			accts:  []string{"account-1"},
			mutate: nil,
		},
		{
			name:   "all granted accounts deleted from wallet",
			store:  &mockStore{rel: grantedRelationship("account-1", "account-2")},
			accts:  nil,
			mutate: nil,
		},
		{
			name:  "granted persona data insufficient",
			store: &mockStore{rel: grantedRelationship("account-1", "account-2")},
			accts: []string{"account-1", "account-2"},
			mutate: func(r *interaction.Request) {
				r.OngoingPersonaData = &interaction.PersonaDataItem{
					NumberOfEmailAddresses: &interaction.NumberOfValues{Quantity: 1, Quantifier: interaction.QuantifierExactly},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.store, grantedProfile(tt.accts...))

			_, err := f.engine.Authorize(context.Background(), silentRequest(tt.mutate))
			require.Error(t, err)
			assert.True(t, errors.Is(err, interaction.ErrNotPossibleAutomatically))

			// 回落不派发任何响应，交互式流程接管
			assert.Empty(t, f.link.responses)
			assert.Empty(t, tt.store.bumpCalls)
		})
	}
}

func TestAuthorizeCancelledBeforeDispatch(t *testing.T) {
	store := &mockStore{rel: grantedRelationship("account-1", "account-2")}
	f := newFixture(store, grantedProfile("account-1", "account-2"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.engine.Authorize(ctx, silentRequest(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// 取消后不留任何部分状态
	assert.Empty(t, f.link.responses)
	assert.Empty(t, store.bumpCalls)
}

func TestAuthorizeBumpFailureDoesNotUndoDispatch(t *testing.T) {
	store := &mockStore{
		rel:     grantedRelationship("account-1", "account-2"),
		bumpErr: errors.New("db connection lost"),
	}
	f := newFixture(store, grantedProfile("account-1", "account-2"))

	ack, err := f.engine.Authorize(context.Background(), silentRequest(nil))
	require.NoError(t, err)
	require.NotNil(t, ack)
	require.Len(t, f.link.responses, 1)
	assert.True(t, f.link.responses[0].IsSuccess())
}
