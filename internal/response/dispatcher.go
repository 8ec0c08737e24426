package response

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/metrics"
)

// LinkTransport 浏览器连接器链接通道
type LinkTransport interface {
	// Send 通过指定链接发送响应，链接不存在时返回 TransportChannelUnavailable
	Send(ctx context.Context, linkID string, resp *interaction.Response) error
}

// MobileBridge 移动端远程会话通道
type MobileBridge interface {
	// Publish 向远程会话发布响应
	Publish(ctx context.Context, sessionID string, resp *interaction.Response) error
}

// Ack 派发成功的回执
type Ack struct {
	InteractionID string
	Channel       interaction.ChannelKind
}

// Dispatcher 把响应按原通道派发回 dApp。
// 每个 interactionId 至多派发一次，重复派发直接拒绝。
type Dispatcher struct {
	link   LinkTransport
	mobile MobileBridge

	mu        sync.Mutex
	delivered map[string]struct{}
}

// NewDispatcher 创建响应派发器
func NewDispatcher(link LinkTransport, mobile MobileBridge) *Dispatcher {
	return &Dispatcher{
		link:      link,
		mobile:    mobile,
		delivered: make(map[string]struct{}),
	}
}

// Dispatch 派发响应。通道由请求到达时记录的 RemoteChannel 决定，
// 派发失败时记录并返回 TransportError，不自动重试。
func (d *Dispatcher) Dispatch(ctx context.Context, channel interaction.RemoteChannel, resp *interaction.Response) (*Ack, error) {
	if !d.markDelivered(resp.InteractionID) {
		log.Warn().
			Str("interaction_id", resp.InteractionID).
			Msg("Duplicate dispatch suppressed")
		return nil, &interaction.TransportError{Kind: interaction.TransportSendFailed, Channel: channel.Kind}
	}

	var err error
	switch channel.Kind {
	case interaction.ChannelRemoteSession:
		err = d.mobile.Publish(ctx, channel.ID, resp)
	default:
		err = d.link.Send(ctx, channel.ID, resp)
	}
	if err != nil {
		// 发送失败后允许调用方决定是否重派
		d.unmarkDelivered(resp.InteractionID)
		metrics.ResponsesDispatched.WithLabelValues(string(channel.Kind), metrics.OutcomeFailure).Inc()
		log.Error().Err(err).
			Str("interaction_id", resp.InteractionID).
			Str("channel", string(channel.Kind)).
			Msg("Failed to dispatch response")
		if _, ok := err.(*interaction.TransportError); ok {
			return nil, err
		}
		return nil, &interaction.TransportError{Kind: interaction.TransportSendFailed, Channel: channel.Kind, Cause: err}
	}

	metrics.ResponsesDispatched.WithLabelValues(string(channel.Kind), metrics.OutcomeSuccess).Inc()
	log.Debug().
		Str("interaction_id", resp.InteractionID).
		Str("channel", string(channel.Kind)).
		Str("discriminator", string(resp.Discriminator)).
		Msg("Response dispatched")
	return &Ack{InteractionID: resp.InteractionID, Channel: channel.Kind}, nil
}

func (d *Dispatcher) markDelivered(interactionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.delivered[interactionID]; ok {
		return false
	}
	d.delivered[interactionID] = struct{}{}
	return true
}

func (d *Dispatcher) unmarkDelivered(interactionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.delivered, interactionID)
}
