package wallet

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
)

func testProfile() *InMemoryProfile {
	profile := NewInMemoryProfile()
	profile.Register(&SigningEntity{Kind: EntityAccount, Address: "account-1", NetworkID: 2, Label: "Main"})
	profile.Register(&SigningEntity{Kind: EntityAccount, Address: "account-2", NetworkID: 2, Label: "Savings"})
	profile.Register(&SigningEntity{Kind: EntityPersona, Address: "identity-1", NetworkID: 2, Label: "Sajjon"})
	return profile
}

func TestRequiredSignersResolvesAllEntities(t *testing.T) {
	resolver := NewResolver(testProfile())

	signers, err := resolver.RequiredSigners(context.Background(), []string{"account-1", "account-2"}, []string{"identity-1"})
	require.NoError(t, err)
	require.Len(t, signers, 3)
	assert.Equal(t, "account-1", signers[0].Address)
	assert.Equal(t, "identity-1", signers[2].Address)
	assert.Equal(t, EntityPersona, signers[2].Kind)
}

func TestRequiredSignersFailsClosed(t *testing.T) {
	resolver := NewResolver(testProfile())

	// 1. 未知账户：整体失败，不返回部分结果
	signers, err := resolver.RequiredSigners(context.Background(), []string{"account-1", "account-gone"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEntity))
	assert.Nil(t, signers)

	// 2. 未知身份同理
	signers, err = resolver.RequiredSigners(context.Background(), nil, []string{"identity-gone"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEntity))
	assert.Nil(t, signers)
}

func TestLiveAccountsSkipsMissing(t *testing.T) {
	resolver := NewResolver(testProfile())

	// 授权后被删除的账户被静默跳过
	accounts, err := resolver.LiveAccounts(context.Background(), []string{"account-1", "account-gone", "account-2"})
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "account-1", accounts[0].Address)
	assert.Equal(t, "account-2", accounts[1].Address)
}

func TestInMemoryProfileOrderAndRemove(t *testing.T) {
	profile := testProfile()

	accounts, err := profile.AccountsOnCurrentNetwork(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "account-1", accounts[0].Address)

	profile.Remove("account-1")
	accounts, err = profile.AccountsOnCurrentNetwork(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "account-2", accounts[0].Address)
}

func TestFieldsOfKinds(t *testing.T) {
	data := &PersonaData{
		Name:           &interaction.PersonaDataName{GivenNames: "Alex", FamilyName: "Cyon"},
		EmailAddresses: []string{"alex@cyon.dev", "backup@cyon.dev"},
	}

	// 1. exactly 1 个邮箱：截取前 1 个
	out := data.FieldsOfKinds([]interaction.RequiredField{
		{Kind: interaction.FieldName, NumberOfValues: interaction.NumberOfValues{Quantity: 1, Quantifier: interaction.QuantifierExactly}},
		{Kind: interaction.FieldEmailAddress, NumberOfValues: interaction.NumberOfValues{Quantity: 1, Quantifier: interaction.QuantifierExactly}},
	})
	require.NotNil(t, out)
	assert.Equal(t, "Alex", out.Name.GivenNames)
	assert.Equal(t, []string{"alex@cyon.dev"}, out.EmailAddresses)

	// 2. atLeast 1 个邮箱：返回全部
	out = data.FieldsOfKinds([]interaction.RequiredField{
		{Kind: interaction.FieldEmailAddress, NumberOfValues: interaction.NumberOfValues{Quantity: 1, Quantifier: interaction.QuantifierAtLeast}},
	})
	require.NotNil(t, out)
	assert.Len(t, out.EmailAddresses, 2)

	// 3. 缺少请求的字段：整体返回 nil
	out = data.FieldsOfKinds([]interaction.RequiredField{
		{Kind: interaction.FieldPhoneNumber, NumberOfValues: interaction.NumberOfValues{Quantity: 1, Quantifier: interaction.QuantifierExactly}},
	})
	assert.Nil(t, out)

	// 4. 无数据
	var none *PersonaData
	assert.Nil(t, none.FieldsOfKinds(nil))
}
