package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// BrowserConfig 远程浏览器渲染服务配置。
type BrowserConfig struct {
	// BaseURL 渲染服务地址。
	BaseURL string

	// Timeout 渲染请求超时时间（渲染比静态抓取慢得多）。
	Timeout time.Duration

	// WaitFor 页面加载后的额外等待时间，给 JS 渲染留时间。
	WaitFor time.Duration
}

// DefaultBrowserConfig 返回默认配置。
func DefaultBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		BaseURL: "http://localhost:3000",
		Timeout: 90 * time.Second,
		WaitFor: 2 * time.Second,
	}
}

// BrowserClient 远程浏览器渲染客户端。
// 将 JS 密集页面交给无头浏览器服务渲染后取回 HTML。
type BrowserClient struct {
	config *BrowserConfig
	resty  *resty.Client
}

// NewBrowserClient 创建渲染客户端。
func NewBrowserClient(cfg *BrowserConfig) *BrowserClient {
	if cfg == nil {
		cfg = DefaultBrowserConfig()
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	// 渲染服务 5xx 时重试一次
	rc.SetRetryCount(1)
	rc.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r.StatusCode() >= 500
	})

	return &BrowserClient{
		config: cfg,
		resty:  rc,
	}
}

type renderRequest struct {
	URL     string `json:"url"`
	WaitFor int64  `json:"waitFor,omitempty"`
	Format  string `json:"format,omitempty"`
}

type renderResponse struct {
	Content string `json:"content"`
	HTML    string `json:"html"`
	Status  int    `json:"status"`
}

// Render 渲染页面并返回最终 HTML。
func (c *BrowserClient) Render(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	var result renderResponse
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(renderRequest{
			URL:     rawURL,
			WaitFor: c.config.WaitFor.Milliseconds(),
			Format:  "html",
		}).
		SetResult(&result).
		Post("/v1/scrape")
	if err != nil {
		return "", fmt.Errorf("render %s: %w", rawURL, err)
	}

	if !resp.IsSuccess() {
		return "", fmt.Errorf("render %s: status %d: %s", rawURL, resp.StatusCode(), resp.String())
	}

	// 不同版本的渲染服务字段名不同
	html := result.HTML
	if html == "" {
		html = result.Content
	}
	if html == "" {
		return "", fmt.Errorf("render %s: empty response body", rawURL)
	}

	return html, nil
}

// Ping 检查渲染服务可用性。
func (c *BrowserClient) Ping(ctx context.Context) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return fmt.Errorf("browser service unreachable: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("browser service unhealthy: status %d", resp.StatusCode())
	}
	return nil
}
