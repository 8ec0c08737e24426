package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFromContext 取出请求作用域的 logger，没有时退回全局 logger
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}

// LogToContext 把 logger 挂到 context 上
func LogToContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}
