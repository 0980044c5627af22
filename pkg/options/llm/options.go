// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// ProviderOptions 定义 LLM 供应商配置。
type ProviderOptions struct {
	// Provider 供应商名称（gemini 等）。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥。
	APIKey string `json:"-" mapstructure:"api-key"`

	// Model 使用的模型名称。
	Model string `json:"model" mapstructure:"model"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries 最大重试次数。
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`
}

// NewProviderOptions 创建默认 LLM 供应商配置。
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "gemini",
		Timeout:    60 * time.Second,
		MaxRetries: 3,
	}
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"model":       o.Model,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
	}
}

// AddFlags adds flags for LLM provider options under the given prefix.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefix string) {
	fs.StringVar(&o.Provider, prefix+".provider", o.Provider, "LLM provider name")
	fs.StringVar(&o.BaseURL, prefix+".base-url", o.BaseURL, "LLM API base URL")
	fs.StringVar(&o.APIKey, prefix+".api-key", o.APIKey, "LLM API key (DEPRECATED: use GEMINI_API_KEY env var instead)")
	fs.StringVar(&o.Model, prefix+".model", o.Model, "LLM model name")
	fs.DurationVar(&o.Timeout, prefix+".timeout", o.Timeout, "LLM request timeout")
	fs.IntVar(&o.MaxRetries, prefix+".max-retries", o.MaxRetries, "LLM max retries")
}

// Validate validates the provider options under the given prefix.
func (o *ProviderOptions) Validate(prefix string) error {
	if o.Provider == "" {
		return fmt.Errorf("%s.provider is required", prefix)
	}
	if o.Model == "" {
		return fmt.Errorf("%s.model is required", prefix)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("%s.timeout must be positive", prefix)
	}
	if o.APIKey == "" {
		o.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return nil
}
