package wallet

import (
	"context"

	"github.com/pkg/errors"
)

// ProfileReader 钱包档案的只读视图（当前网络）
type ProfileReader interface {
	AccountOnCurrentNetwork(ctx context.Context, address string) (*SigningEntity, error)
	PersonaOnCurrentNetwork(ctx context.Context, address string) (*SigningEntity, error)
	AccountsOnCurrentNetwork(ctx context.Context) ([]*SigningEntity, error)
	PersonasOnCurrentNetwork(ctx context.Context) ([]*SigningEntity, error)
}

// ErrUnknownEntity 地址不属于钱包控制的任何实体
var ErrUnknownEntity = errors.New("address does not resolve to a wallet entity")

// Resolver 把请求引用的地址解析为钱包已知的签名实体
type Resolver struct {
	profile ProfileReader
}

// NewResolver 创建实体解析器
func NewResolver(profile ProfileReader) *Resolver {
	return &Resolver{profile: profile}
}

// RequiredSigners 解析 manifest 要求签名的全部账户与身份。
// 任一地址未知即失败（fail closed），不返回部分结果。
func (r *Resolver) RequiredSigners(ctx context.Context, accountAddresses, identityAddresses []string) ([]*SigningEntity, error) {
	signers := make([]*SigningEntity, 0, len(accountAddresses)+len(identityAddresses))
	for _, address := range accountAddresses {
		entity, err := r.profile.AccountOnCurrentNetwork(ctx, address)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve account %s", address)
		}
		if entity == nil {
			return nil, errors.Wrapf(ErrUnknownEntity, "account %s", address)
		}
		signers = append(signers, entity)
	}
	for _, address := range identityAddresses {
		entity, err := r.profile.PersonaOnCurrentNetwork(ctx, address)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve persona %s", address)
		}
		if entity == nil {
			return nil, errors.Wrapf(ErrUnknownEntity, "persona %s", address)
		}
		signers = append(signers, entity)
	}
	return signers, nil
}

// LiveAccounts 解析账户地址，静默跳过已不存在的账户。
// 静默复用授权接受部分解析结果（账户可能在授权后被删除或隐藏）。
func (r *Resolver) LiveAccounts(ctx context.Context, addresses []string) ([]*SigningEntity, error) {
	accounts := make([]*SigningEntity, 0, len(addresses))
	for _, address := range addresses {
		entity, err := r.profile.AccountOnCurrentNetwork(ctx, address)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to look up account %s", address)
		}
		if entity == nil {
			continue
		}
		accounts = append(accounts, entity)
	}
	return accounts, nil
}
