// Package scrape 提供网页抓取和解析能力。
// 包含静态 HTTP 抓取、远程浏览器渲染和 URL 重定向解析。
package scrape

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config HTTP 抓取客户端配置。
type Config struct {
	// Timeout 单次请求超时时间。
	Timeout time.Duration

	// RetryCount 重试次数。
	RetryCount int

	// RetryWaitTime 重试等待时间。
	RetryWaitTime time.Duration

	// RetryMaxWaitTime 最大重试等待时间。
	RetryMaxWaitTime time.Duration

	// MaxRedirects 最大重定向次数。
	MaxRedirects int

	// UserAgent 请求 User-Agent。
	UserAgent string
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 3 * time.Second,
		MaxRedirects:     10,
		UserAgent:        "Mozilla/5.0 (compatible; AgentForge/1.0)",
	}
}

// FetchResult 一次抓取的结果。
type FetchResult struct {
	// URL 请求的原始 URL。
	URL string

	// FinalURL 跟随重定向后的最终 URL。
	FinalURL string

	// StatusCode HTTP 状态码。
	StatusCode int

	// HTML 响应正文。
	HTML string
}

// Client 静态抓取客户端，基于 resty。
type Client struct {
	resty     *resty.Client
	userAgent string
}

// NewClient 创建抓取客户端。
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(cfg.RetryMaxWaitTime).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.MaxRedirects))

	return &Client{
		resty:     rc,
		userAgent: cfg.UserAgent,
	}
}

// ValidateURL 校验 URL 格式，仅允许 HTTP(S)。
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("only HTTP(S) URLs are supported, got scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", rawURL)
	}
	return nil
}

// Fetch 抓取页面内容，跟随重定向。
func (c *Client) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgent).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	result := &FetchResult{
		URL:        rawURL,
		FinalURL:   rawURL,
		StatusCode: resp.StatusCode(),
		HTML:       resp.String(),
	}
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		result.FinalURL = raw.Request.URL.String()
	}

	if !resp.IsSuccess() {
		return result, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode())
	}

	return result, nil
}

// Resolve 解析 URL 的最终地址（跟随重定向，不保留正文）。
func (c *Client) Resolve(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgent).
		Head(rawURL)
	if err != nil || !resp.IsSuccess() {
		// 部分站点不支持 HEAD，回退到 GET
		resp, err = c.resty.R().
			SetContext(ctx).
			SetHeader("User-Agent", c.userAgent).
			Get(rawURL)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", rawURL, err)
		}
	}

	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String(), nil
	}
	return rawURL, nil
}
