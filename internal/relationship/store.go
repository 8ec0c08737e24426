package relationship

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound 指定的授权关系不存在
var ErrNotFound = errors.New("authorized dapp relationship not found")

// Store 授权关系的持久化接口。
// 实现必须保证对同一 (dAppDefinitionAddress, networkId) 行的
// 读-改-写操作串行化，不同关系之间互不阻塞。
type Store interface {
	// Get 按 dApp 定义地址与网络查询关系，不存在时返回 ErrNotFound
	Get(ctx context.Context, dappDefinitionAddress string, networkID uint8) (*Relationship, error)

	// Upsert 写入整条关系记录
	Upsert(ctx context.Context, rel *Relationship) error

	// UpdatePersona 在行锁内更新关系中的单个身份记录
	UpdatePersona(ctx context.Context, dappDefinitionAddress string, networkID uint8, persona AuthorizedPersona) error

	// BumpLastLogin 在行锁内刷新身份的最近登录时间
	BumpLastLogin(ctx context.Context, dappDefinitionAddress string, networkID uint8, identityAddress string, at time.Time) error

	// DeletePersona 从关系中移除单个身份，移除最后一个身份时删除整条关系
	DeletePersona(ctx context.Context, dappDefinitionAddress string, networkID uint8, identityAddress string) error

	// Delete 删除整条关系
	Delete(ctx context.Context, dappDefinitionAddress string, networkID uint8) error

	// ListByPersona 列出某身份参与的全部关系
	ListByPersona(ctx context.Context, networkID uint8, identityAddress string) ([]*Relationship, error)

	// List 列出某网络下的全部关系
	List(ctx context.Context, networkID uint8) ([]*Relationship, error)
}
