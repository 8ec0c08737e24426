package interaction

import (
	"errors"
	"fmt"
)

// ErrRejectedByUser 用户拒绝了签名或授权
var ErrRejectedByUser = errors.New("rejected by user")

// DappErrorType 发给 dApp 的机器可读错误码
type DappErrorType string

const (
	DappErrorWrongNetwork               DappErrorType = "wrongNetwork"
	DappErrorInvalidRequest             DappErrorType = "invalidRequest"
	DappErrorWrongAccountType           DappErrorType = "wrongAccountType"
	DappErrorUnknownWebsite             DappErrorType = "unknownWebsite"
	DappErrorInvalidPersona             DappErrorType = "invalidPersona"
	DappErrorFailedToPrepareTransaction DappErrorType = "failedToPrepareTransaction"
	DappErrorFailedToSignTransaction    DappErrorType = "failedToSignTransaction"
	DappErrorFailedToSignAuthChallenge  DappErrorType = "failedToSignAuthChallenge"
	DappErrorRejectedByUser             DappErrorType = "rejectedByUser"
)

// VerificationErrorKind 请求校验失败的类别
type VerificationErrorKind int

const (
	VerificationWrongNetwork VerificationErrorKind = iota
	VerificationInvalidRequest
	VerificationWrongAccountType
	VerificationUnknownWebsite
)

// VerificationError 请求校验失败。校验器自身负责派发失败响应，
// 该错误返回给调用方仅用于日志与遥测。
type VerificationError struct {
	Kind   VerificationErrorKind
	Detail string
}

func (e *VerificationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("verification failed: %s: %s", e.Kind.String(), e.Detail)
	}
	return fmt.Sprintf("verification failed: %s", e.Kind.String())
}

// String 类别名称
func (k VerificationErrorKind) String() string {
	switch k {
	case VerificationWrongNetwork:
		return "wrong network"
	case VerificationInvalidRequest:
		return "invalid request"
	case VerificationWrongAccountType:
		return "wrong account type"
	case VerificationUnknownWebsite:
		return "unknown website"
	default:
		return "unknown"
	}
}

// DappErrorType 映射到发给 dApp 的错误码
func (e *VerificationError) DappErrorType() DappErrorType {
	switch e.Kind {
	case VerificationWrongNetwork:
		return DappErrorWrongNetwork
	case VerificationWrongAccountType:
		return DappErrorWrongAccountType
	case VerificationUnknownWebsite:
		return DappErrorUnknownWebsite
	default:
		return DappErrorInvalidRequest
	}
}

// Message 人类可读的失败说明
func (e *VerificationError) Message() string {
	switch e.Kind {
	case VerificationWrongNetwork:
		return e.Detail
	case VerificationWrongAccountType:
		return "dApp definition address is not a dApp definition account"
	case VerificationUnknownWebsite:
		return "origin and dApp definition do not vouch for each other"
	default:
		return "request could not be processed"
	}
}

// AuthorizationError 静默复用授权的失败类别
type AuthorizationError struct {
	Kind AuthorizationErrorKind
}

// AuthorizationErrorKind 授权失败类别
type AuthorizationErrorKind int

const (
	AuthorizationInvalidPersona AuthorizationErrorKind = iota
	AuthorizationNotPossibleAutomatically
)

func (e *AuthorizationError) Error() string {
	switch e.Kind {
	case AuthorizationInvalidPersona:
		return "invalid persona"
	default:
		return "not possible to authenticate automatically"
	}
}

// 静默授权的两个终态。ErrNotPossibleAutomatically 不派发失败响应，
// 由调用方回落到交互式流程。
var (
	ErrInvalidPersona           = &AuthorizationError{Kind: AuthorizationInvalidPersona}
	ErrNotPossibleAutomatically = &AuthorizationError{Kind: AuthorizationNotPossibleAutomatically}
)

// PrepareTransactionErrorKind 公证管线失败的类别
type PrepareTransactionErrorKind int

const (
	PrepareGetEpoch PrepareTransactionErrorKind = iota
	PrepareBuildTransactionHeader
	PrepareSignCompiledTransactionIntent
	PrepareFailedToSignAuthChallenge
	PrepareNotarizedTransaction
)

// PrepareTransactionError 公证管线失败；管线内不重试，重试由调用方决定。
type PrepareTransactionError struct {
	Kind  PrepareTransactionErrorKind
	Cause error
}

func (e *PrepareTransactionError) Error() string {
	msg := ""
	switch e.Kind {
	case PrepareGetEpoch:
		msg = "failed to get current epoch"
	case PrepareBuildTransactionHeader:
		msg = "failed to build transaction header"
	case PrepareSignCompiledTransactionIntent:
		msg = "failed to sign compiled transaction intent"
	case PrepareFailedToSignAuthChallenge:
		msg = "failed to sign auth challenge"
	case PrepareNotarizedTransaction:
		msg = "failed to prepare notarized transaction"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 透出底层原因
func (e *PrepareTransactionError) Unwrap() error {
	return e.Cause
}

// DappErrorType 映射到发给 dApp 的错误码
func (e *PrepareTransactionError) DappErrorType() DappErrorType {
	if errors.Is(e.Cause, ErrRejectedByUser) {
		return DappErrorRejectedByUser
	}
	switch e.Kind {
	case PrepareGetEpoch, PrepareBuildTransactionHeader:
		return DappErrorFailedToPrepareTransaction
	case PrepareFailedToSignAuthChallenge:
		return DappErrorFailedToSignAuthChallenge
	default:
		return DappErrorFailedToSignTransaction
	}
}

// TransportErrorKind 传输失败的类别
type TransportErrorKind int

const (
	TransportChannelUnavailable TransportErrorKind = iota
	TransportSendFailed
)

// TransportError 响应派发失败
type TransportError struct {
	Kind    TransportErrorKind
	Channel ChannelKind
	Cause   error
}

func (e *TransportError) Error() string {
	msg := "send failed"
	if e.Kind == TransportChannelUnavailable {
		msg = "channel unavailable"
	}
	msg = fmt.Sprintf("transport %s: %s", e.Channel, msg)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 透出底层原因
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// DappError 可映射为 dApp 错误码的错误
type DappError interface {
	error
	DappErrorType() DappErrorType
}

// ErrorTypeOf 从任意错误提取 dApp 错误码，未知错误归为 invalidRequest
func ErrorTypeOf(err error) DappErrorType {
	switch e := err.(type) {
	case DappError:
		return e.DappErrorType()
	case *AuthorizationError:
		return DappErrorInvalidPersona
	default:
		return DappErrorInvalidRequest
	}
}
