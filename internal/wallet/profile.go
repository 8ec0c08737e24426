package wallet

import (
	"context"
	"sync"
)

// InMemoryProfile 内存中的钱包档案。host 钱包在启动时注册实体，
// 实体的增删对后续读取立即可见。
type InMemoryProfile struct {
	mu       sync.RWMutex
	accounts map[string]*SigningEntity
	personas map[string]*SigningEntity
	// 保持注册顺序，账户列表顺序即授权顺序
	accountOrder []string
	personaOrder []string
}

// NewInMemoryProfile 创建空档案
func NewInMemoryProfile() *InMemoryProfile {
	return &InMemoryProfile{
		accounts: make(map[string]*SigningEntity),
		personas: make(map[string]*SigningEntity),
	}
}

// Register 注册实体，同地址覆盖
func (p *InMemoryProfile) Register(entity *SigningEntity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch entity.Kind {
	case EntityPersona:
		if _, ok := p.personas[entity.Address]; !ok {
			p.personaOrder = append(p.personaOrder, entity.Address)
		}
		p.personas[entity.Address] = entity
	default:
		if _, ok := p.accounts[entity.Address]; !ok {
			p.accountOrder = append(p.accountOrder, entity.Address)
		}
		p.accounts[entity.Address] = entity
	}
}

// Remove 移除实体
func (p *InMemoryProfile) Remove(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.accounts, address)
	delete(p.personas, address)
}

// AccountOnCurrentNetwork 按地址查账户，不存在时返回 nil
func (p *InMemoryProfile) AccountOnCurrentNetwork(ctx context.Context, address string) (*SigningEntity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accounts[address], nil
}

// PersonaOnCurrentNetwork 按地址查身份，不存在时返回 nil
func (p *InMemoryProfile) PersonaOnCurrentNetwork(ctx context.Context, address string) (*SigningEntity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.personas[address], nil
}

// AccountsOnCurrentNetwork 按注册顺序列出全部账户
func (p *InMemoryProfile) AccountsOnCurrentNetwork(ctx context.Context) ([]*SigningEntity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*SigningEntity, 0, len(p.accounts))
	for _, address := range p.accountOrder {
		if entity, ok := p.accounts[address]; ok {
			out = append(out, entity)
		}
	}
	return out, nil
}

// PersonasOnCurrentNetwork 按注册顺序列出全部身份
func (p *InMemoryProfile) PersonasOnCurrentNetwork(ctx context.Context) ([]*SigningEntity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*SigningEntity, 0, len(p.personas))
	for _, address := range p.personaOrder {
		if entity, ok := p.personas[address]; ok {
			out = append(out, entity)
		}
	}
	return out, nil
}
