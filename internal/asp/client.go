package asp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"avdb-go/internal/config"
)

// ASP 名称常量
const (
	ASPFanza  = "FANZA"
	ASPMgs    = "MGS"
	ASPSokmil = "SOKMIL"
	ASPDuga   = "DUGA"
)

// Item 伙伴目录 API 返回的单个商品条目（统一后的字段）
type Item struct {
	OriginalID   string   `json:"content_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        int      `json:"price"`
	ListPrice    int      `json:"list_price"`
	SaleEndDate  string   `json:"sale_end_date"`
	AffiliateURL string   `json:"affiliate_url"`
	ImageURL     string   `json:"image_url"`
	SampleURL    string   `json:"sample_url"`
	ReleaseDate  string   `json:"release_date"`
	Duration     int      `json:"duration"`
	Performers   []string `json:"performers"`
	Tags         []string `json:"tags"`
}

// feedResponse 伙伴目录 API 的响应外层
type feedResponse struct {
	Result struct {
		TotalCount int    `json:"total_count"`
		Items      []Item `json:"items"`
	} `json:"result"`
}

// Client 联盟伙伴目录 API 客户端
type Client struct {
	cfg        *config.ASPConfig
	httpClient *http.Client
}

// NewClient 创建伙伴 API 客户端
func NewClient(cfg *config.ASPConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
	}
}

// FetchPage 拉取指定 ASP 的一页商品目录
// 未配置的 ASP 返回错误，由调用方跳过
func (c *Client) FetchPage(ctx context.Context, aspName string, page int, keyword string) ([]Item, error) {
	partner, ok := c.cfg.Partners[aspName]
	if !ok || partner.BaseURL == "" {
		return nil, fmt.Errorf("asp %s is not configured", aspName)
	}

	pageSize := partner.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	u, err := url.Parse(partner.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url for %s: %w", aspName, err)
	}

	q := u.Query()
	q.Set("api_key", partner.APIKey)
	q.Set("affiliate_id", partner.AffiliateID)
	q.Set("hits", strconv.Itoa(pageSize))
	q.Set("offset", strconv.Itoa((page-1)*pageSize+1))
	if keyword != "" {
		q.Set("keyword", keyword)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s catalog: %w", aspName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s catalog: unexpected status %d", aspName, resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode %s catalog response: %w", aspName, err)
	}

	return feed.Result.Items, nil
}

// Names 返回已配置的 ASP 名称列表
func (c *Client) Names() []string {
	names := make([]string, 0, len(c.cfg.Partners))
	for name, p := range c.cfg.Partners {
		if p.BaseURL != "" {
			names = append(names, name)
		}
	}
	return names
}
