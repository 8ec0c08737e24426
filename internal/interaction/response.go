package interaction

// ResponseDiscriminator 响应信封类型
type ResponseDiscriminator string

const (
	ResponseSuccess ResponseDiscriminator = "success"
	ResponseFailure ResponseDiscriminator = "failure"
)

// AuthProof 签名证明（公钥 + 曲线 + 签名，hex 编码由序列化层负责）
type AuthProof struct {
	PublicKey []byte `json:"publicKey"`
	Curve     string `json:"curve"`
	Signature []byte `json:"signature"`
}

// ResponsePersona 响应中携带的身份信息
type ResponsePersona struct {
	IdentityAddress string `json:"identityAddress"`
	Label           string `json:"label"`
}

// AuthResponseItem 认证子响应
type AuthResponseItem struct {
	Mode      AuthMode        `json:"discriminator"`
	Persona   ResponsePersona `json:"persona"`
	Challenge []byte          `json:"challenge,omitempty"`
	Proof     *AuthProof      `json:"proof,omitempty"`
}

// WalletAccount 响应中携带的账户信息
type WalletAccount struct {
	Address      string `json:"address"`
	Label        string `json:"label"`
	AppearanceID int    `json:"appearanceId"`
}

// AccountProof 单个账户的所有权证明
type AccountProof struct {
	AccountAddress string    `json:"accountAddress"`
	Proof          AuthProof `json:"proof"`
}

// AccountsResponseItem 账户子响应；Proofs 要么覆盖全部账户要么为空
type AccountsResponseItem struct {
	Accounts  []WalletAccount `json:"accounts"`
	Challenge []byte          `json:"challenge,omitempty"`
	Proofs    []AccountProof  `json:"proofs,omitempty"`
}

// PersonaDataName 姓名字段
type PersonaDataName struct {
	GivenNames string `json:"givenNames"`
	FamilyName string `json:"familyName"`
	Nickname   string `json:"nickname,omitempty"`
}

// PersonaDataResponseItem 个人数据子响应
type PersonaDataResponseItem struct {
	Name           *PersonaDataName `json:"name,omitempty"`
	EmailAddresses []string         `json:"emailAddresses,omitempty"`
	PhoneNumbers   []string         `json:"phoneNumbers,omitempty"`
}

// SendTransactionResponseItem 交易发送确认，携带公证后的 intent hash
type SendTransactionResponseItem struct {
	TransactionIntentHash string `json:"transactionIntentHash"`
}

// ResponseItems 成功响应的载荷，按请求类型区分
type ResponseItems struct {
	Kind Kind `json:"discriminator"`

	// authorizedRequest
	Auth *AuthResponseItem `json:"auth,omitempty"`
	// authorizedRequest / unauthorizedRequest
	OneTimeAccounts    *AccountsResponseItem    `json:"oneTimeAccounts,omitempty"`
	OngoingAccounts    *AccountsResponseItem    `json:"ongoingAccounts,omitempty"`
	OneTimePersonaData *PersonaDataResponseItem `json:"oneTimePersonaData,omitempty"`
	OngoingPersonaData *PersonaDataResponseItem `json:"ongoingPersonaData,omitempty"`
	// transaction
	Send *SendTransactionResponseItem `json:"send,omitempty"`
}

// Response 返回给 dApp 的响应信封。每个通过校验的请求恰好派发一次。
type Response struct {
	Discriminator ResponseDiscriminator `json:"discriminator"`
	InteractionID string                `json:"interactionId"`

	// 仅 success
	Items *ResponseItems `json:"items,omitempty"`
	// 仅 failure
	Error   DappErrorType `json:"error,omitempty"`
	Message string        `json:"message,omitempty"`
}

// NewSuccessResponse 构造成功信封
func NewSuccessResponse(interactionID string, items *ResponseItems) *Response {
	return &Response{
		Discriminator: ResponseSuccess,
		InteractionID: interactionID,
		Items:         items,
	}
}

// NewFailureResponse 构造失败信封，携带单个错误码
func NewFailureResponse(interactionID string, errorType DappErrorType, message string) *Response {
	return &Response{
		Discriminator: ResponseFailure,
		InteractionID: interactionID,
		Error:         errorType,
		Message:       message,
	}
}

// IsSuccess 是否为成功信封
func (r *Response) IsSuccess() bool {
	return r.Discriminator == ResponseSuccess
}
