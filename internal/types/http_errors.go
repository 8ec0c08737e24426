package types

import (
	"github.com/go-openapi/swag"
)

// PublicHTTPErrorType 错误响应的 type 字段取值
const (
	PublicHTTPErrorTypeGeneric      = "generic"
	PublicHTTPErrorTypeUnauthorized = "unauthorized"
	PublicHTTPErrorTypeNotFound     = "notFound"
)

// PublicHTTPError 对外暴露的标准错误响应体
type PublicHTTPError struct {
	Code    *int64  `json:"code"`
	Message *string `json:"message"`
	Type    *string `json:"type"`
}

// NewPublicHTTPError 构造错误响应体
func NewPublicHTTPError(code int, errorType, message string) *PublicHTTPError {
	return &PublicHTTPError{
		Code:    swag.Int64(int64(code)),
		Message: swag.String(message),
		Type:    swag.String(errorType),
	}
}
