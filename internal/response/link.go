package response

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
)

const linkWriteTimeout = 10 * time.Second

// WebsocketLink 基于 WebSocket 的连接器链接通道。
// 每个已建立的链接对应一条长连接，按 linkID 索引。
type WebsocketLink struct {
	mu    sync.RWMutex
	conns map[string]*linkConn
}

// linkConn 带写锁的链接连接。
// gorilla/websocket 只允许单个并发写者，并发派发到同一链接时串行写入。
type linkConn struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *linkConn) writeJSON(resp *interaction.Response) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(linkWriteTimeout))
	return c.conn.WriteJSON(resp)
}

// NewWebsocketLink 创建链接通道
func NewWebsocketLink() *WebsocketLink {
	return &WebsocketLink{conns: make(map[string]*linkConn)}
}

// Attach 注册已完成握手的链接连接，同 ID 的旧连接被关闭
func (l *WebsocketLink) Attach(linkID string, conn *websocket.Conn) {
	l.mu.Lock()
	old := l.conns[linkID]
	l.conns[linkID] = &linkConn{conn: conn}
	l.mu.Unlock()

	if old != nil {
		old.conn.Close()
	}
	log.Info().Str("link_id", linkID).Msg("Connector link attached")
}

// Detach 移除链接连接
func (l *WebsocketLink) Detach(linkID string, conn *websocket.Conn) {
	l.mu.Lock()
	if c := l.conns[linkID]; c != nil && c.conn == conn {
		delete(l.conns, linkID)
	}
	l.mu.Unlock()
	log.Info().Str("link_id", linkID).Msg("Connector link detached")
}

// Send 通过链接推送响应
func (l *WebsocketLink) Send(ctx context.Context, linkID string, resp *interaction.Response) error {
	l.mu.RLock()
	c := l.conns[linkID]
	l.mu.RUnlock()

	if c == nil {
		return &interaction.TransportError{
			Kind:    interaction.TransportChannelUnavailable,
			Channel: interaction.ChannelLinkConnector,
			Cause:   errors.Errorf("no connection for link %s", linkID),
		}
	}

	if err := c.writeJSON(resp); err != nil {
		return &interaction.TransportError{
			Kind:    interaction.TransportSendFailed,
			Channel: interaction.ChannelLinkConnector,
			Cause:   errors.Wrap(err, "failed to write response"),
		}
	}
	return nil
}
