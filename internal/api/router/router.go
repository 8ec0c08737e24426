package router

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/api/handlers"
	"github.com/kashguard/go-wallet-connect/internal/api/httperrors"
	"github.com/kashguard/go-wallet-connect/internal/api/middleware"
	"github.com/kashguard/go-wallet-connect/internal/types"
	"github.com/kashguard/go-wallet-connect/internal/util"
)

// Init 初始化 echo 实例、中间件与全部路由
func Init(s *api.Server) {
	s.Echo = echo.New()
	s.Echo.HideBanner = true
	s.Echo.HTTPErrorHandler = errorHandler

	s.Echo.Use(echoMiddleware.Recover())
	s.Echo.Use(echoprometheus.NewMiddleware("wallet_connect"))
	s.Echo.Use(requestLogger())

	s.Router = &api.Router{
		Root:     s.Echo.Group(""),
		Internal: s.Echo.Group("/-"),
		APIV1:    s.Echo.Group("/api/v1", middleware.JWT(s.Config.Auth.JWTSecret)),
	}

	if !s.Config.Echo.HideInternalRoutes {
		s.Router.Internal.GET("/metrics", echoprometheus.NewHandler())
	}

	s.Router.Routes = handlers.AttachAllRoutes(s)
}

// requestLogger 把带请求字段的 logger 挂到 context 上并记录访问日志
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := log.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Logger()
			c.SetRequest(req.WithContext(util.LogToContext(req.Context(), l)))

			err := next(c)

			l.Debug().Int("status", c.Response().Status).Msg("Request handled")
			return err
		}
	}
}

// errorHandler 把内部错误统一序列化为 PublicHTTPError
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var code int
	var payload *types.PublicHTTPError
	switch e := err.(type) {
	case *httperrors.HTTPError:
		code = int(*e.Code)
		payload = &e.PublicHTTPError
	case *echo.HTTPError:
		code = e.Code
		payload = types.NewPublicHTTPError(e.Code, types.PublicHTTPErrorTypeGeneric, http.StatusText(e.Code))
	default:
		code = http.StatusInternalServerError
		payload = types.NewPublicHTTPError(code, types.PublicHTTPErrorTypeGeneric, http.StatusText(code))
	}

	if err := c.JSON(code, payload); err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}
