package relationship

import (
	"time"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
)

// SharedAccounts 某身份已授权给 dApp 的账户集合，以及授权时的原始请求
type SharedAccounts struct {
	Request          interaction.NumberOfValues `json:"request"`
	AccountAddresses []string                   `json:"ids"`
}

// GrantedField 已授权的个人数据字段类型与数量
type GrantedField struct {
	Kind  interaction.FieldKind `json:"kind"`
	Count int                   `json:"count"`
}

// AuthorizedPersona 授权关系中的单个身份记录
type AuthorizedPersona struct {
	IdentityAddress   string          `json:"identityAddress"`
	LastLogin         time.Time       `json:"lastLogin"`
	SharedAccounts    *SharedAccounts `json:"sharedAccounts,omitempty"`
	SharedPersonaData []GrantedField  `json:"sharedPersonaData,omitempty"`
}

// Relationship dApp 与钱包之间的持久化授权关系。
// 仅在静默或交互式授权成功后作为副作用被修改。
type Relationship struct {
	DappDefinitionAddress string              `json:"dAppDefinitionAddress"`
	NetworkID             uint8               `json:"networkId"`
	DisplayName           string              `json:"displayName"`
	Personas              []AuthorizedPersona `json:"referencesToAuthorizedPersonas"`
}

// Persona 按身份地址查找授权记录
func (r *Relationship) Persona(identityAddress string) *AuthorizedPersona {
	for i := range r.Personas {
		if r.Personas[i].IdentityAddress == identityAddress {
			return &r.Personas[i]
		}
	}
	return nil
}

// UpsertPersona 更新或追加身份记录
func (r *Relationship) UpsertPersona(persona AuthorizedPersona) {
	for i := range r.Personas {
		if r.Personas[i].IdentityAddress == persona.IdentityAddress {
			r.Personas[i] = persona
			return
		}
	}
	r.Personas = append(r.Personas, persona)
}

// AccountAddressesForRequest 按请求的数量限定词返回已授权的账户地址。
// exactly N：授权不少于 N 时取前 N 个（授权顺序确定）；
// atLeast N：授权不少于 N 时返回全部（N=0 表示无下限）。
// 不满足时返回 nil，交互式流程接管。
func (p *AuthorizedPersona) AccountAddressesForRequest(n interaction.NumberOfValues) []string {
	if p.SharedAccounts == nil {
		return nil
	}
	granted := p.SharedAccounts.AccountAddresses
	if len(granted) < n.Quantity {
		return nil
	}
	if n.Exactly() {
		return granted[:n.Quantity]
	}
	return granted
}

// HasAllDataFields 关系是否已授权全部请求字段类型且数量足够
func (p *AuthorizedPersona) HasAllDataFields(required []interaction.RequiredField) bool {
	for _, field := range required {
		if p.grantedCount(field.Kind) < field.NumberOfValues.Quantity {
			return false
		}
	}
	return true
}

func (p *AuthorizedPersona) grantedCount(kind interaction.FieldKind) int {
	for _, granted := range p.SharedPersonaData {
		if granted.Kind == kind {
			return granted.Count
		}
	}
	return 0
}
