package util

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Validatable 自带校验逻辑的请求体
type Validatable interface {
	Validate() error
}

// BindAndValidateBody 绑定请求体并执行校验
func BindAndValidateBody(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to bind request body")
	}
	if validatable, ok := v.(Validatable); ok {
		if err := validatable.Validate(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return nil
}
