package notary

import (
	"context"
	"crypto/rand"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/gateway"
	"github.com/kashguard/go-wallet-connect/internal/interaction"
)

// NotarizeRequest 一次公证的全部输入
type NotarizeRequest struct {
	NetworkID     uint8
	Manifest      string
	Blobs         [][]byte
	Message       string
	TipPercentage uint16
	// 按请求的 manifest 解析出的必要签名实体地址
	Signers []string
}

// Pipeline 交易公证管线。每一步失败立即终止，
// 管线内不做重试，是否重试由调用方决定。
type Pipeline struct {
	state  gateway.StateClient
	source SignatureSource
	newKey func() (NotaryKey, error)
}

// NewPipeline 创建公证管线
func NewPipeline(state gateway.StateClient, source SignatureSource) *Pipeline {
	return &Pipeline{
		state:  state,
		source: source,
		newKey: func() (NotaryKey, error) { return NewEphemeralKey() },
	}
}

// Notarize 执行公证：取纪元、建交易头、收集实体签名、公证签名、编译。
// 失败返回 *interaction.PrepareTransactionError，各阶段类别不同。
func (p *Pipeline) Notarize(ctx context.Context, req NotarizeRequest) (*Result, error) {
	// 1. 查询当前纪元，确定有效窗口
	epoch, err := p.state.CurrentEpoch(ctx)
	if err != nil {
		return nil, &interaction.PrepareTransactionError{Kind: interaction.PrepareGetEpoch, Cause: err}
	}

	// 2. 生成一次性公证密钥并构造交易头
	key, err := p.newKey()
	if err != nil {
		return nil, &interaction.PrepareTransactionError{Kind: interaction.PrepareBuildTransactionHeader, Cause: err}
	}
	nonce, err := randomNonce()
	if err != nil {
		return nil, &interaction.PrepareTransactionError{Kind: interaction.PrepareBuildTransactionHeader, Cause: err}
	}
	header := Header{
		NetworkID:           req.NetworkID,
		StartEpochInclusive: epoch,
		EndEpochExclusive:   epoch + EpochWindow,
		Nonce:               nonce,
		NotaryPublicKey:     key.PublicKeyBytes(),
		NotaryIsSignatory:   false,
		TipPercentage:       req.TipPercentage,
	}

	// 3. 编译意图并收集全部实体签名
	intent := IntentDraft{
		Header:   header,
		Manifest: req.Manifest,
		Blobs:    req.Blobs,
		Message:  req.Message,
	}
	signatures, err := p.source.Sign(ctx, SignRequest{
		IntentHash: intent.Hash(),
		Signers:    req.Signers,
	})
	if err != nil {
		return nil, &interaction.PrepareTransactionError{Kind: interaction.PrepareSignCompiledTransactionIntent, Cause: err}
	}
	// 签名必须齐全，缺一不公证
	if len(signatures) != len(req.Signers) {
		return nil, &interaction.PrepareTransactionError{
			Kind:  interaction.PrepareSignCompiledTransactionIntent,
			Cause: errors.Errorf("expected %d signatures, got %d", len(req.Signers), len(signatures)),
		}
	}

	// 4. 公证签名并编译最终交易
	signed := SignedIntent{Intent: intent, Signatures: signatures}
	notarySig, err := key.Sign(signed.Hash())
	if err != nil {
		return nil, &interaction.PrepareTransactionError{Kind: interaction.PrepareNotarizedTransaction, Cause: err}
	}
	tx := NotarizedTransaction{SignedIntent: signed, NotarySignature: notarySig}
	raw, err := tx.Compile()
	if err != nil {
		return nil, &interaction.PrepareTransactionError{Kind: interaction.PrepareNotarizedTransaction, Cause: err}
	}

	result := &Result{
		Raw:        raw,
		IntentHash: tx.IntentHashHex(),
		EndEpoch:   header.EndEpochExclusive,
	}
	log.Debug().
		Str("intent_hash", result.IntentHash).
		Uint64("start_epoch", header.StartEpochInclusive).
		Uint64("end_epoch", header.EndEpochExclusive).
		Int("signatures", len(signatures)).
		Msg("Transaction notarized")
	return result, nil
}

// randomNonce 随机 32 位 nonce，使同一意图的重复提交互不冲突
func randomNonce() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, errors.Wrap(err, "failed to read random nonce")
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
