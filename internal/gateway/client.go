package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// EntityDetails 网络上实体的元数据摘要
type EntityDetails struct {
	Address         string
	Name            string
	AccountType     string
	ClaimedWebsites []string
	ClaimedEntities []string
}

// accountTypeDappDefinition dApp 定义账户在元数据中的标记值
const accountTypeDappDefinition = "dapp definition"

// IsDappDefinition 实体是否被标记为 dApp 定义账户
func (d EntityDetails) IsDappDefinition() bool {
	return d.AccountType == accountTypeDappDefinition
}

// ClaimsWebsite 实体元数据是否宣称了该 origin
func (d EntityDetails) ClaimsWebsite(origin string) bool {
	for _, website := range d.ClaimedWebsites {
		if website == origin {
			return true
		}
	}
	return false
}

// StateClient 状态查询服务的窄契约
type StateClient interface {
	// EntityDetails 查询实体元数据；bypassCache 为 true 时必须取最新数据
	EntityDetails(ctx context.Context, addresses []string, bypassCache bool) ([]EntityDetails, error)
	// CurrentEpoch 查询账本当前 epoch
	CurrentEpoch(ctx context.Context) (uint64, error)
}

// Client 网关 HTTP 客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// defaultRequestTimeout 未配置超时时的兜底值
const defaultRequestTimeout = 30 * time.Second

// NewClient 创建网关客户端，timeout 为零时使用默认超时
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type entityDetailsRequest struct {
	Addresses []string            `json:"addresses"`
	OptIns    entityDetailsOptIns `json:"opt_ins"`
}

type entityDetailsOptIns struct {
	ExplicitMetadata []string `json:"explicit_metadata"`
}

type entityDetailsResponse struct {
	Items []entityDetailsItem `json:"items"`
}

type entityDetailsItem struct {
	Address  string `json:"address"`
	Metadata struct {
		Items []metadataItem `json:"items"`
	} `json:"metadata"`
}

type metadataItem struct {
	Key   string `json:"key"`
	Value struct {
		Typed struct {
			Value  string   `json:"value,omitempty"`
			Values []string `json:"values,omitempty"`
		} `json:"typed"`
	} `json:"value"`
}

type constructionResponse struct {
	LedgerState struct {
		Epoch uint64 `json:"epoch"`
	} `json:"ledger_state"`
}

// EntityDetails 查询实体元数据
func (c *Client) EntityDetails(ctx context.Context, addresses []string, bypassCache bool) ([]EntityDetails, error) {
	reqBody := entityDetailsRequest{
		Addresses: addresses,
		OptIns: entityDetailsOptIns{
			ExplicitMetadata: []string{"name", "account_type", "claimed_websites", "claimed_entities"},
		},
	}

	var resp entityDetailsResponse
	if err := c.post(ctx, "/state/entity/details", reqBody, &resp, bypassCache); err != nil {
		return nil, errors.Wrap(err, "failed to fetch entity details")
	}

	details := make([]EntityDetails, 0, len(resp.Items))
	for _, item := range resp.Items {
		detail := EntityDetails{Address: item.Address}
		for _, meta := range item.Metadata.Items {
			switch meta.Key {
			case "name":
				detail.Name = meta.Value.Typed.Value
			case "account_type":
				detail.AccountType = meta.Value.Typed.Value
			case "claimed_websites":
				detail.ClaimedWebsites = meta.Value.Typed.Values
			case "claimed_entities":
				detail.ClaimedEntities = meta.Value.Typed.Values
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

// CurrentEpoch 查询账本当前 epoch
func (c *Client) CurrentEpoch(ctx context.Context) (uint64, error) {
	var resp constructionResponse
	if err := c.post(ctx, "/transaction/construction", struct{}{}, &resp, true); err != nil {
		return 0, errors.Wrap(err, "failed to fetch current epoch")
	}
	return resp.LedgerState.Epoch, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}, bypassCache bool) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if bypassCache {
		httpReq.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "failed to execute HTTP request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode gateway response")
	}
	return nil
}
