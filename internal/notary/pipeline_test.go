package notary

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-wallet-connect/internal/gateway"
	"github.com/kashguard/go-wallet-connect/internal/interaction"
)

type mockStateClient struct {
	epoch    uint64
	epochErr error
}

func (m *mockStateClient) EntityDetails(ctx context.Context, addresses []string, bypassCache bool) ([]gateway.EntityDetails, error) {
	return nil, nil
}

func (m *mockStateClient) CurrentEpoch(ctx context.Context) (uint64, error) {
	return m.epoch, m.epochErr
}

type mockSignatureSource struct {
	signatures []SignatureWithPublicKey
	err        error
	gotRequest SignRequest
}

func (m *mockSignatureSource) Sign(ctx context.Context, req SignRequest) ([]SignatureWithPublicKey, error) {
	m.gotRequest = req
	return m.signatures, m.err
}

func entitySignature(seed byte) SignatureWithPublicKey {
	var raw [ed25519.SeedSize]byte
	raw[0] = seed
	priv := ed25519.NewKeyFromSeed(raw[:])
	return SignatureWithPublicKey{
		PublicKey: priv.Public().(ed25519.PublicKey),
		Curve:     "curve25519",
		Signature: ed25519.Sign(priv, []byte("intent")),
	}
}

func defaultRequest() NotarizeRequest {
	return NotarizeRequest{
		NetworkID:     2,
		Manifest:      `CALL_METHOD Address("account_tdx_2_12x4") "lock_fee" Decimal("25")`,
		TipPercentage: 5,
		Signers:       []string{"account_tdx_2_12x4"},
	}
}

func TestNotarizeSuccess(t *testing.T) {
	state := &mockStateClient{epoch: 1000}
	source := &mockSignatureSource{signatures: []SignatureWithPublicKey{entitySignature(1)}}
	pipeline := NewPipeline(state, source)

	result, err := pipeline.Notarize(context.Background(), defaultRequest())
	require.NoError(t, err)
	require.NotNil(t, result)

	// 1. 有效窗口从当前纪元起
	assert.Equal(t, uint64(1000+EpochWindow), result.EndEpoch)
	// 2. 意图哈希非空且为十六进制
	assert.Len(t, result.IntentHash, 64)
	// 3. 编译结果包含公证签名
	assert.NotEmpty(t, result.Raw)
	// 4. 待签哈希送达签名者
	assert.Len(t, source.gotRequest.IntentHash, 32)
	assert.Equal(t, []string{"account_tdx_2_12x4"}, source.gotRequest.Signers)
}

func TestNotarizeEpochFailure(t *testing.T) {
	state := &mockStateClient{epochErr: errors.New("gateway unreachable")}
	pipeline := NewPipeline(state, &mockSignatureSource{})

	_, err := pipeline.Notarize(context.Background(), defaultRequest())
	require.Error(t, err)

	var prepareErr *interaction.PrepareTransactionError
	require.True(t, errors.As(err, &prepareErr))
	assert.Equal(t, interaction.PrepareGetEpoch, prepareErr.Kind)
}

func TestNotarizeSigningFailure(t *testing.T) {
	state := &mockStateClient{epoch: 1000}
	source := &mockSignatureSource{err: errors.Wrap(interaction.ErrRejectedByUser, "signing aborted")}
	pipeline := NewPipeline(state, source)

	_, err := pipeline.Notarize(context.Background(), defaultRequest())
	require.Error(t, err)

	var prepareErr *interaction.PrepareTransactionError
	require.True(t, errors.As(err, &prepareErr))
	assert.Equal(t, interaction.PrepareSignCompiledTransactionIntent, prepareErr.Kind)
	// 用户拒绝优先于阶段映射
	assert.Equal(t, interaction.DappErrorRejectedByUser, interaction.ErrorTypeOf(prepareErr))
}

func TestNotarizeIncompleteSignatures(t *testing.T) {
	state := &mockStateClient{epoch: 1000}
	// 两个签名者只回了一个签名
	source := &mockSignatureSource{signatures: []SignatureWithPublicKey{entitySignature(1)}}
	pipeline := NewPipeline(state, source)

	req := defaultRequest()
	req.Signers = []string{"account_tdx_2_12x4", "identity_tdx_2_122m"}
	_, err := pipeline.Notarize(context.Background(), req)
	require.Error(t, err)

	var prepareErr *interaction.PrepareTransactionError
	require.True(t, errors.As(err, &prepareErr))
	assert.Equal(t, interaction.PrepareSignCompiledTransactionIntent, prepareErr.Kind)
}

func TestNotarizeFreshKeyPerTransaction(t *testing.T) {
	state := &mockStateClient{epoch: 1000}
	source := &mockSignatureSource{signatures: []SignatureWithPublicKey{entitySignature(1)}}

	var keys [][]byte
	pipeline := NewPipeline(state, source)
	pipeline.newKey = func() (NotaryKey, error) {
		key, err := NewEphemeralKey()
		if err == nil {
			keys = append(keys, key.PublicKeyBytes())
		}
		return key, err
	}

	_, err := pipeline.Notarize(context.Background(), defaultRequest())
	require.NoError(t, err)
	_, err = pipeline.Notarize(context.Background(), defaultRequest())
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestIntentCompileDeterministic(t *testing.T) {
	draft := IntentDraft{
		Header: Header{
			NetworkID:           2,
			StartEpochInclusive: 1000,
			EndEpochExclusive:   1010,
			Nonce:               42,
			NotaryPublicKey:     []byte{1, 2, 3},
			TipPercentage:       5,
		},
		Manifest: "CALL_METHOD ...",
		Blobs:    [][]byte{{0xde, 0xad}},
		Message:  "hello",
	}

	assert.Equal(t, draft.Compile(), draft.Compile())
	assert.Equal(t, draft.Hash(), draft.Hash())

	// nonce 不同则哈希不同
	other := draft
	other.Header.Nonce = 43
	assert.NotEqual(t, draft.Hash(), other.Hash())
}

func TestNotarizedTransactionRequiresSignature(t *testing.T) {
	tx := NotarizedTransaction{SignedIntent: SignedIntent{}}
	_, err := tx.Compile()
	require.Error(t, err)
}

func TestRequiredSignersFromManifest(t *testing.T) {
	manifest := `
CALL_METHOD Address("account_tdx_2_12x4") "lock_fee" Decimal("25");
CALL_METHOD Address("account_tdx_2_12x4") "withdraw" Address("resource_tdx_2_1abc") Decimal("10");
CALL_METHOD Address("account_tdx_2_12y5") "create_proof_of_amount" Address("resource_tdx_2_1abc") Decimal("1");
CALL_METHOD Address("identity_tdx_2_122m") "securify";
CALL_METHOD Address("account_tdx_2_12z6") "try_deposit_or_abort" Bucket("bucket1");
`
	analyzer := NewStaticAnalyzer()
	accounts, identities, err := analyzer.RequiredSigners(context.Background(), manifest)
	require.NoError(t, err)

	// 去重且保持首次出现顺序，存款方法不要求签名
	assert.Equal(t, []string{"account_tdx_2_12x4", "account_tdx_2_12y5"}, accounts)
	assert.Equal(t, []string{"identity_tdx_2_122m"}, identities)
}

func TestAuthChallengeHash(t *testing.T) {
	challenge := make([]byte, 32)
	challenge[0] = 0xab

	// 1. 确定性
	first, err := AuthChallengeHash(challenge, "account_tdx_2_12x4", "https://dashboard.rdx.works")
	require.NoError(t, err)
	second, err := AuthChallengeHash(challenge, "account_tdx_2_12x4", "https://dashboard.rdx.works")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 32)

	// 2. origin 参与哈希
	other, err := AuthChallengeHash(challenge, "account_tdx_2_12x4", "https://evil.example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	// 3. 质询长度必须是 32 字节
	_, err = AuthChallengeHash([]byte{1, 2, 3}, "account_tdx_2_12x4", "https://dashboard.rdx.works")
	require.Error(t, err)
}
