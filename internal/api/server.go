package api

import (
	"context"
	"database/sql"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/config"
	"github.com/kashguard/go-wallet-connect/internal/gateway"
	"github.com/kashguard/go-wallet-connect/internal/pipeline"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/response"
	"github.com/kashguard/go-wallet-connect/internal/wallet"
)

// Router 路由分组
type Router struct {
	Routes []*echo.Route

	Root     *echo.Group
	APIV1    *echo.Group
	Internal *echo.Group
}

// Server 服务根对象，持有全部组件
type Server struct {
	Config config.Server
	DB     *sql.DB
	Redis  *redis.Client
	Echo   *echo.Echo
	Router *Router

	Clock     time2.Clock
	Gateway   gateway.StateClient
	Store     relationship.Store
	Profile   *wallet.InMemoryProfile
	Keys      *wallet.DeviceKeyStore
	Link      *response.WebsocketLink
	Handler   *pipeline.Handler
	Responder *pipeline.Responder
}

// Ready 依赖是否全部就绪
func (s *Server) Ready(ctx context.Context) error {
	if s.DB == nil || s.Redis == nil {
		return errors.New("server is not fully initialized")
	}
	if err := s.DB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "database is not reachable")
	}
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis is not reachable")
	}
	return nil
}

// Start 启动 HTTP 服务，阻塞直到退出
func (s *Server) Start() error {
	if s.Echo == nil {
		return errors.New("server is not initialized")
	}
	return s.Echo.Start(s.Config.Echo.ListenAddress)
}

// Shutdown 优雅停机并释放资源
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down server")

	if s.Echo != nil {
		if err := s.Echo.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down echo")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
