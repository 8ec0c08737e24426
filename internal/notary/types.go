package notary

import (
	"context"
)

// 提交窗口：起始纪元之后保持交易有效的纪元数
const EpochWindow = 10

// Header 交易头，限定有效窗口并绑定公证人
type Header struct {
	NetworkID           uint8
	StartEpochInclusive uint64
	EndEpochExclusive   uint64
	Nonce               uint32
	NotaryPublicKey     []byte
	NotaryIsSignatory   bool
	TipPercentage       uint16
}

// SignatureWithPublicKey 签名者对哈希的签名与对应公钥
type SignatureWithPublicKey struct {
	PublicKey []byte
	Curve     string
	Signature []byte
}

// SignRequest 发给签名者集合的待签哈希
type SignRequest struct {
	IntentHash []byte
	// 需要签名的派生实例，缺一不可
	Signers []string
}

// SignatureSource 收集交易所需的全部实体签名。
// 用户拒绝时返回 interaction.ErrRejectedByUser，
// 返回的签名数量必须与请求的签名者数量一致。
type SignatureSource interface {
	Sign(ctx context.Context, req SignRequest) ([]SignatureWithPublicKey, error)
}

// NotaryKey 公证密钥，对签名后的意图哈希做最终签名
type NotaryKey interface {
	PublicKeyBytes() []byte
	Curve() string
	Sign(hash []byte) ([]byte, error)
}

// Result 公证完成的交易
type Result struct {
	// 编译后的公证交易，提交给网络的最终字节
	Raw []byte
	// 意图哈希，用于轮询交易状态及回执 dApp
	IntentHash string
	// 超过该纪元后交易不再可能上链
	EndEpoch uint64
}
