// Package app provides the extractor service application.
package app

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/forge-io/agentforge/internal/extractor/biz"
	httpopts "github.com/forge-io/agentforge/pkg/options/http"
	llmopts "github.com/forge-io/agentforge/pkg/options/llm"
	logopts "github.com/forge-io/agentforge/pkg/options/logger"
	mongoopts "github.com/forge-io/agentforge/pkg/options/mongodb"
	pgopts "github.com/forge-io/agentforge/pkg/options/postgres"
	redisopts "github.com/forge-io/agentforge/pkg/options/redis"
	"github.com/forge-io/agentforge/pkg/scrape"
)

// Options contains all extractor service options.
type Options struct {
	// Mode is the gin server mode (debug, release, test).
	Mode string `json:"mode" mapstructure:"mode"`

	// HTTP contains HTTP server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Postgres contains PostgreSQL configuration.
	Postgres *pgopts.Options `json:"postgres" mapstructure:"postgres"`

	// Redis contains Redis configuration for the resolution cache.
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`

	// Mongo contains MongoDB configuration for raw HTML snapshots.
	Mongo *mongoopts.Options `json:"mongo" mapstructure:"mongo"`

	// LLM contains chat provider configuration.
	LLM *llmopts.ProviderOptions `json:"llm" mapstructure:"llm"`

	// Scrape contains static HTTP fetch configuration.
	Scrape *ScrapeOptions `json:"scrape" mapstructure:"scrape"`

	// Browser contains browser render service configuration.
	Browser *BrowserOptions `json:"browser" mapstructure:"browser"`

	// Extractor contains extraction pipeline configuration.
	Extractor *ExtractorOptions `json:"extractor" mapstructure:"extractor"`
}

// ScrapeOptions 静态抓取配置。
type ScrapeOptions struct {
	// Timeout 单次请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// RetryCount 重试次数。
	RetryCount int `json:"retry-count" mapstructure:"retry-count"`

	// MaxRedirects 最大重定向次数。
	MaxRedirects int `json:"max-redirects" mapstructure:"max-redirects"`

	// UserAgent 请求使用的 User-Agent。
	UserAgent string `json:"user-agent" mapstructure:"user-agent"`
}

// BrowserOptions 浏览器渲染服务配置。
type BrowserOptions struct {
	// Enabled 是否启用渲染层。
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// BaseURL 渲染服务地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// Timeout 渲染请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// WaitFor 页面加载后的等待时间。
	WaitFor time.Duration `json:"wait-for" mapstructure:"wait-for"`
}

// ExtractorOptions 提取管线配置。
type ExtractorOptions struct {
	// PremiumThreshold premium 层最低评分。
	PremiumThreshold int `json:"premium-threshold" mapstructure:"premium-threshold"`

	// StandardThreshold standard 层最低评分。
	StandardThreshold int `json:"standard-threshold" mapstructure:"standard-threshold"`

	// BasicThreshold basic 层最低评分，低于此值拒绝。
	BasicThreshold int `json:"basic-threshold" mapstructure:"basic-threshold"`

	// TargetScore 达到该评分后不再升级提取层。
	TargetScore int `json:"target-score" mapstructure:"target-score"`

	// BatchConcurrency 批量提取并发数。
	BatchConcurrency int `json:"batch-concurrency" mapstructure:"batch-concurrency"`

	// PerURLTimeout 批量提取中单个 URL 的超时时间。
	PerURLTimeout time.Duration `json:"per-url-timeout" mapstructure:"per-url-timeout"`

	// ResolveConcurrency URL 解析并发数。
	ResolveConcurrency int `json:"resolve-concurrency" mapstructure:"resolve-concurrency"`

	// ResolveCacheTTL 解析结果缓存过期时间。
	ResolveCacheTTL time.Duration `json:"resolve-cache-ttl" mapstructure:"resolve-cache-ttl"`

	// LLMEnabled 是否启用 LLM 提取层。
	LLMEnabled bool `json:"llm-enabled" mapstructure:"llm-enabled"`

	// CacheEnabled 是否启用 Redis 解析缓存。
	CacheEnabled bool `json:"cache-enabled" mapstructure:"cache-enabled"`

	// SnapshotEnabled 是否归档 premium 原始 HTML 到 MongoDB。
	SnapshotEnabled bool `json:"snapshot-enabled" mapstructure:"snapshot-enabled"`
}

// NewScrapeOptions 创建默认抓取配置。
func NewScrapeOptions() *ScrapeOptions {
	defaults := scrape.DefaultConfig()
	return &ScrapeOptions{
		Timeout:      defaults.Timeout,
		RetryCount:   defaults.RetryCount,
		MaxRedirects: defaults.MaxRedirects,
		UserAgent:    defaults.UserAgent,
	}
}

// NewBrowserOptions 创建默认浏览器渲染配置。
func NewBrowserOptions() *BrowserOptions {
	defaults := scrape.DefaultBrowserConfig()
	return &BrowserOptions{
		Enabled: true,
		BaseURL: defaults.BaseURL,
		Timeout: defaults.Timeout,
		WaitFor: defaults.WaitFor,
	}
}

// NewExtractorOptions 创建默认提取管线配置。
func NewExtractorOptions() *ExtractorOptions {
	defaults := biz.DefaultConfig()
	return &ExtractorOptions{
		PremiumThreshold:   defaults.Thresholds.Premium,
		StandardThreshold:  defaults.Thresholds.Standard,
		BasicThreshold:     defaults.Thresholds.Basic,
		TargetScore:        defaults.TargetScore,
		BatchConcurrency:   defaults.BatchConcurrency,
		PerURLTimeout:      defaults.PerURLTimeout,
		ResolveConcurrency: defaults.ResolveConcurrency,
		ResolveCacheTTL:    defaults.ResolveCacheTTL,
		LLMEnabled:         defaults.LLMEnabled,
		CacheEnabled:       true,
		SnapshotEnabled:    true,
	}
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = ":8080"

	llmOpts := llmopts.NewProviderOptions()
	llmOpts.Model = "gemini-1.5-flash"

	return &Options{
		Mode:      "release",
		HTTP:      httpOpts,
		Log:       logopts.NewOptions(),
		Postgres:  pgopts.NewOptions(),
		Redis:     redisopts.NewOptions(),
		Mongo:     mongoopts.NewOptions(),
		LLM:       llmOpts,
		Scrape:    NewScrapeOptions(),
		Browser:   NewBrowserOptions(),
		Extractor: NewExtractorOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Gin server mode (debug, release, test)")

	o.HTTP.AddFlags(fs, "server")
	o.Log.AddFlags(fs)
	o.Postgres.AddFlags(fs, "postgres.")
	o.Redis.AddFlags(fs, "redis.")
	o.Mongo.AddFlags(fs, "mongo.")
	o.LLM.AddFlags(fs, "llm")
	o.addScrapeFlags(fs)
	o.addBrowserFlags(fs)
	o.addExtractorFlags(fs)
}

func (o *Options) addScrapeFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.Scrape.Timeout, "scrape.timeout", o.Scrape.Timeout, "Static fetch timeout")
	fs.IntVar(&o.Scrape.RetryCount, "scrape.retry-count", o.Scrape.RetryCount, "Static fetch retry count")
	fs.IntVar(&o.Scrape.MaxRedirects, "scrape.max-redirects", o.Scrape.MaxRedirects, "Maximum redirects to follow")
	fs.StringVar(&o.Scrape.UserAgent, "scrape.user-agent", o.Scrape.UserAgent, "User-Agent header for fetches")
}

func (o *Options) addBrowserFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Browser.Enabled, "browser.enabled", o.Browser.Enabled, "Enable the browser render tier")
	fs.StringVar(&o.Browser.BaseURL, "browser.base-url", o.Browser.BaseURL, "Browser render service base URL")
	fs.DurationVar(&o.Browser.Timeout, "browser.timeout", o.Browser.Timeout, "Browser render request timeout")
	fs.DurationVar(&o.Browser.WaitFor, "browser.wait-for", o.Browser.WaitFor, "Wait after page load before capture")
}

func (o *Options) addExtractorFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Extractor.PremiumThreshold, "extractor.premium-threshold", o.Extractor.PremiumThreshold, "Minimum score for the premium storage tier")
	fs.IntVar(&o.Extractor.StandardThreshold, "extractor.standard-threshold", o.Extractor.StandardThreshold, "Minimum score for the standard storage tier")
	fs.IntVar(&o.Extractor.BasicThreshold, "extractor.basic-threshold", o.Extractor.BasicThreshold, "Minimum score for the basic storage tier")
	fs.IntVar(&o.Extractor.TargetScore, "extractor.target-score", o.Extractor.TargetScore, "Score at which tier escalation stops")
	fs.IntVar(&o.Extractor.BatchConcurrency, "extractor.batch-concurrency", o.Extractor.BatchConcurrency, "Concurrent extractions per batch")
	fs.DurationVar(&o.Extractor.PerURLTimeout, "extractor.per-url-timeout", o.Extractor.PerURLTimeout, "Per-URL timeout in batch extraction")
	fs.IntVar(&o.Extractor.ResolveConcurrency, "extractor.resolve-concurrency", o.Extractor.ResolveConcurrency, "Concurrent URL resolutions")
	fs.DurationVar(&o.Extractor.ResolveCacheTTL, "extractor.resolve-cache-ttl", o.Extractor.ResolveCacheTTL, "TTL for cached URL resolutions")
	fs.BoolVar(&o.Extractor.LLMEnabled, "extractor.llm-enabled", o.Extractor.LLMEnabled, "Enable the LLM extraction tier")
	fs.BoolVar(&o.Extractor.CacheEnabled, "extractor.cache-enabled", o.Extractor.CacheEnabled, "Enable the Redis resolution cache")
	fs.BoolVar(&o.Extractor.SnapshotEnabled, "extractor.snapshot-enabled", o.Extractor.SnapshotEnabled, "Archive premium raw HTML to MongoDB")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if errs := o.HTTP.Validate(); len(errs) > 0 {
		return errs[0]
	}
	if err := o.Postgres.Validate(); err != nil {
		return err
	}
	if o.Extractor.CacheEnabled {
		if err := o.Redis.Validate(); err != nil {
			return err
		}
	}
	if o.Extractor.SnapshotEnabled {
		if err := o.Mongo.Validate(); err != nil {
			return err
		}
	}
	if o.Extractor.LLMEnabled {
		if err := o.LLM.Validate("llm"); err != nil {
			return err
		}
	}

	thresholds := o.thresholds()
	if !thresholds.Valid() {
		return fmt.Errorf("storage thresholds must satisfy 0 < basic < standard < premium <= 100")
	}
	if o.Extractor.TargetScore <= 0 {
		return fmt.Errorf("extractor.target-score must be positive")
	}
	if o.Extractor.BatchConcurrency <= 0 {
		return fmt.Errorf("extractor.batch-concurrency must be positive")
	}
	if o.Extractor.ResolveConcurrency <= 0 {
		return fmt.Errorf("extractor.resolve-concurrency must be positive")
	}
	return nil
}

// Complete completes the options.
func (o *Options) Complete() error {
	if err := o.HTTP.Complete(); err != nil {
		return err
	}
	if err := o.Postgres.Complete(); err != nil {
		return err
	}
	return nil
}

func (o *Options) thresholds() biz.Thresholds {
	return biz.Thresholds{
		Premium:  o.Extractor.PremiumThreshold,
		Standard: o.Extractor.StandardThreshold,
		Basic:    o.Extractor.BasicThreshold,
	}
}

// PipelineConfig 转换为业务层配置。
func (o *Options) PipelineConfig() *biz.Config {
	return &biz.Config{
		Thresholds:         o.thresholds(),
		TargetScore:        o.Extractor.TargetScore,
		BatchConcurrency:   o.Extractor.BatchConcurrency,
		PerURLTimeout:      o.Extractor.PerURLTimeout,
		ResolveConcurrency: o.Extractor.ResolveConcurrency,
		ResolveCacheTTL:    o.Extractor.ResolveCacheTTL,
		LLMEnabled:         o.Extractor.LLMEnabled,
	}
}
