package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// WellKnownPath 网站侧 dApp 定义清单的标准路径
const WellKnownPath = "/.well-known/radix.json"

// WellKnownFetcher 网站侧清单的窄契约
type WellKnownFetcher interface {
	// ClaimedDefinitions 返回 origin 宣称的 dApp 定义地址集合
	ClaimedDefinitions(ctx context.Context, origin string) ([]string, error)
}

// WellKnownClient 通过 HTTPS 拉取网站的 well-known 清单
type WellKnownClient struct {
	client *http.Client
}

// NewWellKnownClient 创建 well-known 清单客户端
func NewWellKnownClient() *WellKnownClient {
	return &WellKnownClient{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type wellKnownFile struct {
	Dapps []struct {
		DappDefinitionAddress string `json:"dAppDefinitionAddress"`
	} `json:"dApps"`
}

// ClaimedDefinitions 拉取并解析清单
func (c *WellKnownClient) ClaimedDefinitions(ctx context.Context, origin string) ([]string, error) {
	url := strings.TrimSuffix(origin, "/") + WellKnownPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch well-known file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("well-known file returned status %d", resp.StatusCode)
	}

	var file wellKnownFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "failed to decode well-known file")
	}

	addresses := make([]string, 0, len(file.Dapps))
	for _, dapp := range file.Dapps {
		addresses = append(addresses, dapp.DappDefinitionAddress)
	}
	return addresses, nil
}
