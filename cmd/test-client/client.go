package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-wallet-connect/internal/interaction"
)

// LinkClient 模拟浏览器连接器的开发客户端
type LinkClient struct {
	baseURL string
	wsURL   string
	linkID  string
	token   string

	http *http.Client
	conn *websocket.Conn
}

// NewLinkClient 创建开发客户端
func NewLinkClient(baseURL, wsURL, linkID, token string) *LinkClient {
	return &LinkClient{
		baseURL: baseURL,
		wsURL:   wsURL,
		linkID:  linkID,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Connect 挂上链接通道
func (c *LinkClient) Connect(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/v1/link/%s", c.wsURL, c.linkID)
	log.Debug().Str("url", url).Msg("Attaching connector link...")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return errors.Wrap(err, "failed to attach connector link")
	}

	c.conn = conn
	log.Info().Str("link_id", c.linkID).Msg("Connector link attached")
	return nil
}

// Close 断开链接
func (c *LinkClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// SendLoginRequest 提交一个 usePersona 登录请求并等待链接推回响应
func (c *LinkClient) SendLoginRequest(ctx context.Context, dappAddr, origin string) (*interaction.Response, error) {
	payload := map[string]interface{}{
		"channel": map[string]string{
			"kind": string(interaction.ChannelLinkConnector),
			"id":   c.linkID,
		},
		"interaction": map[string]interface{}{
			"interactionId": uuid.NewString(),
			"discriminator": string(interaction.KindAuthorized),
			"metadata": map[string]interface{}{
				"version":               2,
				"networkId":             2,
				"origin":                origin,
				"dAppDefinitionAddress": dappAddr,
			},
			"auth": map[string]interface{}{
				"discriminator":   string(interaction.AuthUsePersona),
				"identityAddress": "identity_tdx_2_122mkzkkdf8tfvvmeaqrcyl8l2q2vhpz69rqcmdpvujuu8yzjqrzdm9",
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode interaction")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/interactions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit interaction")
	}
	defer resp.Body.Close()
	log.Info().Int("status", resp.StatusCode).Msg("Interaction submitted")

	c.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var walletResp interaction.Response
	if err := c.conn.ReadJSON(&walletResp); err != nil {
		return nil, errors.Wrap(err, "failed to read response from link")
	}
	return &walletResp, nil
}
