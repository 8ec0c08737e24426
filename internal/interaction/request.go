package interaction

// ChannelKind 传输通道类型
type ChannelKind string

const (
	// ChannelLinkConnector 已建立的加密链接通道（浏览器连接器）
	ChannelLinkConnector ChannelKind = "linkConnector"
	// ChannelRemoteSession 移动端远程会话通道
	ChannelRemoteSession ChannelKind = "remoteSession"
)

// RemoteChannel 标识请求来自哪个传输通道，响应必须原路返回
type RemoteChannel struct {
	Kind ChannelKind `json:"kind"`
	ID   string      `json:"id"`
	// 仅远程会话：需要回源校验时的校验地址
	OriginVerificationURL string `json:"originVerificationUrl,omitempty"`
}

// NeedsOriginVerification 远程会话是否要求回源校验
func (c RemoteChannel) NeedsOriginVerification() bool {
	return c.Kind == ChannelRemoteSession && c.OriginVerificationURL != ""
}

// Kind 请求类型（封闭集合）
type Kind string

const (
	KindUnauthorized Kind = "unauthorizedRequest"
	KindAuthorized   Kind = "authorizedRequest"
	KindTransaction  Kind = "transaction"
)

// AuthMode 认证子请求的模式
type AuthMode string

const (
	AuthLoginWithChallenge    AuthMode = "loginWithChallenge"
	AuthLoginWithoutChallenge AuthMode = "loginWithoutChallenge"
	AuthUsePersona            AuthMode = "usePersona"
)

// Quantifier 请求数量的限定词
type Quantifier string

const (
	QuantifierExactly Quantifier = "exactly"
	QuantifierAtLeast Quantifier = "atLeast"
)

// NumberOfValues 请求的数量与限定词
type NumberOfValues struct {
	Quantity   int        `json:"quantity"`
	Quantifier Quantifier `json:"quantifier"`
}

// Exactly 是否为精确数量请求
func (n NumberOfValues) Exactly() bool {
	return n.Quantifier == QuantifierExactly
}

// Metadata 请求元数据
type Metadata struct {
	ProtocolVersion       uint64 `json:"version"`
	NetworkID             uint8  `json:"networkId"`
	Origin                string `json:"origin"`
	DappDefinitionAddress string `json:"dAppDefinitionAddress"`
	// 钱包内部发起的请求（例如账户校验流程），跳过两向链接校验
	Internal bool `json:"-"`
}

// AuthItem 认证子请求
type AuthItem struct {
	Mode AuthMode `json:"discriminator"`
	// 仅 loginWithChallenge
	Challenge []byte `json:"challenge,omitempty"`
	// 仅 usePersona
	IdentityAddress string `json:"identityAddress,omitempty"`
}

// AccountsItem 账户子请求（一次性或持续授权）
type AccountsItem struct {
	NumberOfAccounts NumberOfValues `json:"numberOfAccounts"`
	Challenge        []byte         `json:"challenge,omitempty"`
}

// Valid 数量非负即为合法
func (a *AccountsItem) Valid() bool {
	return a == nil || a.NumberOfAccounts.Quantity >= 0
}

// FieldKind 个人数据字段类型
type FieldKind string

const (
	FieldName         FieldKind = "fullName"
	FieldEmailAddress FieldKind = "emailAddress"
	FieldPhoneNumber  FieldKind = "phoneNumber"
)

// RequiredField 请求的字段类型及数量
type RequiredField struct {
	Kind           FieldKind
	NumberOfValues NumberOfValues
}

// PersonaDataItem 个人数据子请求
type PersonaDataItem struct {
	IsRequestingName       bool            `json:"isRequestingName,omitempty"`
	NumberOfEmailAddresses *NumberOfValues `json:"numberOfRequestedEmailAddresses,omitempty"`
	NumberOfPhoneNumbers   *NumberOfValues `json:"numberOfRequestedPhoneNumbers,omitempty"`
}

// Valid 至少要请求一个字段
func (p *PersonaDataItem) Valid() bool {
	if p == nil {
		return true
	}
	return p.IsRequestingName || p.NumberOfEmailAddresses != nil || p.NumberOfPhoneNumbers != nil
}

// RequiredFields 展开为字段类型+数量列表
func (p *PersonaDataItem) RequiredFields() []RequiredField {
	if p == nil {
		return nil
	}
	fields := make([]RequiredField, 0, 3)
	if p.IsRequestingName {
		fields = append(fields, RequiredField{
			Kind:           FieldName,
			NumberOfValues: NumberOfValues{Quantity: 1, Quantifier: QuantifierExactly},
		})
	}
	if p.NumberOfEmailAddresses != nil {
		fields = append(fields, RequiredField{Kind: FieldEmailAddress, NumberOfValues: *p.NumberOfEmailAddresses})
	}
	if p.NumberOfPhoneNumbers != nil {
		fields = append(fields, RequiredField{Kind: FieldPhoneNumber, NumberOfValues: *p.NumberOfPhoneNumbers})
	}
	return fields
}

// ResetItem 要求重置既有授权的子请求
type ResetItem struct {
	Accounts    bool `json:"accounts"`
	PersonaData bool `json:"personaData"`
}

// TransactionItem 交易子请求
type TransactionItem struct {
	Manifest      string   `json:"transactionManifest"`
	Blobs         [][]byte `json:"blobs,omitempty"`
	Message       string   `json:"message,omitempty"`
	TipPercentage uint16   `json:"tipPercentage,omitempty"`
}

// Request 来自 dApp 的交互请求。到达时创建，只被管线消费一次，不可变。
type Request struct {
	InteractionID string        `json:"interactionId"`
	Channel       RemoteChannel `json:"-"`
	Metadata      Metadata      `json:"metadata"`
	Kind          Kind          `json:"discriminator"`

	// 仅 authorizedRequest
	Auth *AuthItem `json:"auth,omitempty"`
	// authorizedRequest / unauthorizedRequest
	OneTimeAccounts    *AccountsItem    `json:"oneTimeAccounts,omitempty"`
	OngoingAccounts    *AccountsItem    `json:"ongoingAccounts,omitempty"`
	OneTimePersonaData *PersonaDataItem `json:"oneTimePersonaData,omitempty"`
	OngoingPersonaData *PersonaDataItem `json:"ongoingPersonaData,omitempty"`
	Reset              *ResetItem       `json:"reset,omitempty"`
	// 仅 transaction
	Transaction *TransactionItem `json:"send,omitempty"`
}

// IsInternal 钱包自身发起的请求
func (r *Request) IsInternal() bool {
	return r.Metadata.Internal || r.Channel.ID == ""
}

// IsMobileConnect 是否来自移动端远程会话
func (r *Request) IsMobileConnect() bool {
	return r.Channel.Kind == ChannelRemoteSession
}

// NeedSignatures 请求是否携带需要签名证明的 challenge
func (r *Request) NeedSignatures() bool {
	if r.Auth != nil && r.Auth.Mode == AuthLoginWithChallenge {
		return true
	}
	if r.OngoingAccounts != nil && len(r.OngoingAccounts.Challenge) > 0 {
		return true
	}
	if r.OneTimeAccounts != nil && len(r.OneTimeAccounts.Challenge) > 0 {
		return true
	}
	return false
}

// HasOngoingItemsOnly usePersona 认证、仅含持续授权子请求、且没有重置请求
func (r *Request) HasOngoingItemsOnly() bool {
	return r.usesPersonaAuth() && r.hasNoOneTimeItems() && !r.HasResetItem() &&
		(r.OngoingAccounts != nil || r.OngoingPersonaData != nil)
}

// HasOnlyAuthItem 除认证子请求外不含任何数据子请求
func (r *Request) HasOnlyAuthItem() bool {
	return r.OngoingAccounts == nil && r.OngoingPersonaData == nil &&
		r.OneTimeAccounts == nil && r.OneTimePersonaData == nil
}

// HasResetItem 是否要求重置账户或个人数据授权
func (r *Request) HasResetItem() bool {
	return r.Reset != nil && (r.Reset.Accounts || r.Reset.PersonaData)
}

// Valid 所有账户子请求的数量必须非负
func (r *Request) Valid() bool {
	return r.OngoingAccounts.Valid() && r.OneTimeAccounts.Valid() &&
		r.OngoingPersonaData.Valid() && r.OneTimePersonaData.Valid()
}

func (r *Request) usesPersonaAuth() bool {
	return r.Auth != nil && r.Auth.Mode == AuthUsePersona
}

func (r *Request) hasNoOneTimeItems() bool {
	return r.OneTimeAccounts == nil && r.OneTimePersonaData == nil
}
