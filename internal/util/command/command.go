package command

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/config"
)

// NewSubcommandGroup 组合一组子命令，组本身不可直接执行
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: use,
		Run: func(cmd *cobra.Command, args []string) {
			if err := cmd.Help(); err != nil {
				log.Fatal().Err(err).Msg("Failed to print help")
			}
		},
	}
	cmd.AddCommand(subcommands...)
	return cmd
}

// WithServer 初始化完整服务、执行 fn、退出前释放资源。
// 供需要完整依赖（数据库、Redis、网关客户端）的一次性命令使用。
func WithServer(ctx context.Context, cfg config.Server, fn func(ctx context.Context, s *api.Server) error) error {
	s, err := api.InitNewServer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	return fn(ctx, s)
}
