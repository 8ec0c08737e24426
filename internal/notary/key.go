package notary

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/pkg/errors"
)

// EphemeralKey 一次性 Ed25519 公证密钥。
// 每笔交易生成新密钥，交易提交后即丢弃。
type EphemeralKey struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEphemeralKey 生成一次性公证密钥
func NewEphemeralKey() (*EphemeralKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate notary key")
	}
	return &EphemeralKey{priv: priv, pub: pub}, nil
}

// PublicKeyBytes 公证公钥字节
func (k *EphemeralKey) PublicKeyBytes() []byte {
	return []byte(k.pub)
}

// Curve 公证密钥曲线名
func (k *EphemeralKey) Curve() string {
	return "curve25519"
}

// Sign 对签名意图哈希做公证签名
func (k *EphemeralKey) Sign(hash []byte) ([]byte, error) {
	if len(hash) == 0 {
		return nil, errors.New("empty hash")
	}
	return ed25519.Sign(k.priv, hash), nil
}
