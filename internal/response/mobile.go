package response

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
)

// RedisBridge 通过 Redis 发布/订阅向移动端远程会话投递响应。
// 会话中继订阅 session 频道并把响应转发给发起请求的 dApp。
type RedisBridge struct {
	client *redis.Client
	prefix string
}

// NewRedisBridge 创建远程会话桥
func NewRedisBridge(client *redis.Client) *RedisBridge {
	return &RedisBridge{client: client, prefix: "wallet-connect:session:"}
}

// Publish 向远程会话发布响应
func (b *RedisBridge) Publish(ctx context.Context, sessionID string, resp *interaction.Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return &interaction.TransportError{
			Kind:    interaction.TransportSendFailed,
			Channel: interaction.ChannelRemoteSession,
			Cause:   errors.Wrap(err, "failed to encode response"),
		}
	}

	receivers, err := b.client.Publish(ctx, b.prefix+sessionID, payload).Result()
	if err != nil {
		return &interaction.TransportError{
			Kind:    interaction.TransportSendFailed,
			Channel: interaction.ChannelRemoteSession,
			Cause:   errors.Wrap(err, "failed to publish response"),
		}
	}
	if receivers == 0 {
		return &interaction.TransportError{
			Kind:    interaction.TransportChannelUnavailable,
			Channel: interaction.ChannelRemoteSession,
			Cause:   errors.Errorf("no relay subscribed to session %s", sessionID),
		}
	}

	log.Debug().
		Str("session_id", sessionID).
		Int64("receivers", receivers).
		Msg("Response published to remote session")
	return nil
}
