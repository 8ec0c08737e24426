package wallet

import "github.com/kashguard/go-wallet-connect/internal/interaction"

// EntityKind 签名实体类型
type EntityKind string

const (
	EntityAccount EntityKind = "account"
	EntityPersona EntityKind = "persona"
)

// FactorSourceKind 保护实体的密钥来源类型
type FactorSourceKind string

const (
	FactorSourceDevice            FactorSourceKind = "device"
	FactorSourceLedgerHardware    FactorSourceKind = "ledgerHQHardwareWallet"
	FactorSourceOffDeviceMnemonic FactorSourceKind = "offDeviceMnemonic"
)

// FactorInstance 实体背后的密钥派生实例
type FactorInstance struct {
	FactorSourceID   string
	FactorSourceKind FactorSourceKind
	DerivationPath   string
	PublicKey        []byte
}

// SigningEntity 钱包控制的账户或身份。对本核心只读。
type SigningEntity struct {
	Kind         EntityKind
	Address      string
	NetworkID    uint8
	Label        string
	AppearanceID int
	Factor       FactorInstance
	// 仅 persona
	PersonaData *PersonaData
}

// PersonaData 身份的个人数据字段
type PersonaData struct {
	Name           *interaction.PersonaDataName
	EmailAddresses []string
	PhoneNumbers   []string
}

// FieldsOfKinds 截取请求的字段类型子集；缺少任一请求字段时返回 nil
func (d *PersonaData) FieldsOfKinds(required []interaction.RequiredField) *PersonaData {
	if d == nil {
		return nil
	}
	out := &PersonaData{}
	for _, field := range required {
		switch field.Kind {
		case interaction.FieldName:
			if d.Name == nil {
				return nil
			}
			out.Name = d.Name
		case interaction.FieldEmailAddress:
			if len(d.EmailAddresses) < field.NumberOfValues.Quantity {
				return nil
			}
			out.EmailAddresses = clampValues(d.EmailAddresses, field.NumberOfValues)
		case interaction.FieldPhoneNumber:
			if len(d.PhoneNumbers) < field.NumberOfValues.Quantity {
				return nil
			}
			out.PhoneNumbers = clampValues(d.PhoneNumbers, field.NumberOfValues)
		}
	}
	return out
}

func clampValues(values []string, n interaction.NumberOfValues) []string {
	if n.Exactly() && len(values) > n.Quantity {
		return values[:n.Quantity]
	}
	return values
}
