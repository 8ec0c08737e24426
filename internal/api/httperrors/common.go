package httperrors

import (
	"fmt"
	"net/http"

	"github.com/kashguard/go-wallet-connect/internal/types"
)

// HTTPError 可直接由 echo 错误处理器序列化的错误
type HTTPError struct {
	types.PublicHTTPError
	Internal error
}

// NewHTTPError 构造标准 HTTP 错误
func NewHTTPError(code int, errorType, message string) *HTTPError {
	return &HTTPError{PublicHTTPError: *types.NewPublicHTTPError(code, errorType, message)}
}

func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("HTTPError %d (%s): %s, %v", *e.Code, *e.Type, *e.Message, e.Internal)
	}
	return fmt.Sprintf("HTTPError %d (%s): %s", *e.Code, *e.Type, *e.Message)
}

var (
	ErrNotFoundRelationship = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeNotFound, "Authorized dApp relationship not found.")
	ErrUnauthorized         = NewHTTPError(http.StatusUnauthorized, types.PublicHTTPErrorTypeUnauthorized, "Missing or invalid access token.")
)
