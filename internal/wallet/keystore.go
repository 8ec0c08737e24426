package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/notary"
)

// DeviceKeyStore 设备因子源的密钥仓库。
// 按实体公钥索引 Ed25519 私钥，用于质询证明与交易签名。
type DeviceKeyStore struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PrivateKey
	// 按地址反查实体，交易签名请求只携带地址
	profile ProfileReader
}

// NewDeviceKeyStore 创建设备密钥仓库
func NewDeviceKeyStore(profile ProfileReader) *DeviceKeyStore {
	return &DeviceKeyStore{
		keys:    make(map[string]ed25519.PrivateKey),
		profile: profile,
	}
}

// AddKey 登记实体公钥对应的私钥
func (s *DeviceKeyStore) AddKey(publicKey ed25519.PublicKey, privateKey ed25519.PrivateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[hex.EncodeToString(publicKey)] = privateKey
}

// SignChallenge 用实体密钥对质询哈希签名
func (s *DeviceKeyStore) SignChallenge(ctx context.Context, hash []byte, entity *SigningEntity) (*interaction.AuthProof, error) {
	priv, err := s.keyFor(entity.Factor.PublicKey)
	if err != nil {
		return nil, err
	}
	return &interaction.AuthProof{
		PublicKey: entity.Factor.PublicKey,
		Curve:     "curve25519",
		Signature: ed25519.Sign(priv, hash),
	}, nil
}

// Sign 为交易意图哈希收集全部签名者的签名
func (s *DeviceKeyStore) Sign(ctx context.Context, req notary.SignRequest) ([]notary.SignatureWithPublicKey, error) {
	signatures := make([]notary.SignatureWithPublicKey, 0, len(req.Signers))
	for _, address := range req.Signers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entity, err := s.entityFor(ctx, address)
		if err != nil {
			return nil, err
		}
		priv, err := s.keyFor(entity.Factor.PublicKey)
		if err != nil {
			return nil, err
		}
		signatures = append(signatures, notary.SignatureWithPublicKey{
			PublicKey: entity.Factor.PublicKey,
			Curve:     "curve25519",
			Signature: ed25519.Sign(priv, req.IntentHash),
		})
	}
	return signatures, nil
}

func (s *DeviceKeyStore) entityFor(ctx context.Context, address string) (*SigningEntity, error) {
	entity, err := s.profile.AccountOnCurrentNetwork(ctx, address)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		entity, err = s.profile.PersonaOnCurrentNetwork(ctx, address)
		if err != nil {
			return nil, err
		}
	}
	if entity == nil {
		return nil, errors.Wrapf(ErrUnknownEntity, "signer %s", address)
	}
	return entity, nil
}

func (s *DeviceKeyStore) keyFor(publicKey []byte) (ed25519.PrivateKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	priv, ok := s.keys[hex.EncodeToString(publicKey)]
	if !ok {
		return nil, errors.Errorf("no device key for public key %s", hex.EncodeToString(publicKey))
	}
	return priv, nil
}
