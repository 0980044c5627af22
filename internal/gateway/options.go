// Package app provides the gateway service application.
package app

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/forge-io/agentforge/internal/gateway/biz"
	httpopts "github.com/forge-io/agentforge/pkg/options/http"
	llmopts "github.com/forge-io/agentforge/pkg/options/llm"
	logopts "github.com/forge-io/agentforge/pkg/options/logger"
	pgopts "github.com/forge-io/agentforge/pkg/options/postgres"
	redisopts "github.com/forge-io/agentforge/pkg/options/redis"
)

// Options contains all gateway service options.
type Options struct {
	// Mode is the gin server mode (debug, release, test).
	Mode string `json:"mode" mapstructure:"mode"`

	// HTTP contains HTTP server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Postgres contains PostgreSQL configuration.
	Postgres *pgopts.Options `json:"postgres" mapstructure:"postgres"`

	// Redis contains Redis configuration for the answer cache.
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`

	// LLM contains chat provider configuration.
	LLM *llmopts.ProviderOptions `json:"llm" mapstructure:"llm"`

	// Ask contains question answering configuration.
	Ask *AskOptions `json:"ask" mapstructure:"ask"`
}

// AskOptions 问答配置。
type AskOptions struct {
	// TopK 每次回答检索的事件数量。
	TopK int `json:"top-k" mapstructure:"top-k"`

	// MinScore 作为上下文的事件最低评分。
	MinScore int `json:"min-score" mapstructure:"min-score"`

	// MaxDescriptionChars 单个事件描述在上下文中的最大长度。
	MaxDescriptionChars int `json:"max-description-chars" mapstructure:"max-description-chars"`

	// CacheEnabled 是否启用 Redis 回答缓存。
	CacheEnabled bool `json:"cache-enabled" mapstructure:"cache-enabled"`

	// CacheTTL 回答缓存过期时间。
	CacheTTL time.Duration `json:"cache-ttl" mapstructure:"cache-ttl"`
}

// NewAskOptions 创建默认问答配置。
func NewAskOptions() *AskOptions {
	defaults := biz.DefaultConfig()
	return &AskOptions{
		TopK:                defaults.TopK,
		MinScore:            defaults.MinScore,
		MaxDescriptionChars: defaults.MaxDescriptionChars,
		CacheEnabled:        true,
		CacheTTL:            defaults.AnswerCacheTTL,
	}
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = ":8081"

	llmOpts := llmopts.NewProviderOptions()
	llmOpts.Model = "gemini-1.5-flash"

	return &Options{
		Mode:     "release",
		HTTP:     httpOpts,
		Log:      logopts.NewOptions(),
		Postgres: pgopts.NewOptions(),
		Redis:    redisopts.NewOptions(),
		LLM:      llmOpts,
		Ask:      NewAskOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Gin server mode (debug, release, test)")

	o.HTTP.AddFlags(fs, "server")
	o.Log.AddFlags(fs)
	o.Postgres.AddFlags(fs, "postgres.")
	o.Redis.AddFlags(fs, "redis.")
	o.LLM.AddFlags(fs, "llm")
	o.addAskFlags(fs)
}

func (o *Options) addAskFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Ask.TopK, "ask.top-k", o.Ask.TopK, "Events retrieved per answer")
	fs.IntVar(&o.Ask.MinScore, "ask.min-score", o.Ask.MinScore, "Minimum event score for answer context")
	fs.IntVar(&o.Ask.MaxDescriptionChars, "ask.max-description-chars", o.Ask.MaxDescriptionChars, "Maximum description length per context event")
	fs.BoolVar(&o.Ask.CacheEnabled, "ask.cache-enabled", o.Ask.CacheEnabled, "Enable the Redis answer cache")
	fs.DurationVar(&o.Ask.CacheTTL, "ask.cache-ttl", o.Ask.CacheTTL, "TTL for cached answers")
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
	if o.Ask.CacheEnabled {
		if err := o.Redis.Validate(); err != nil {
			return err
		}
	}
	if err := o.LLM.Validate("llm"); err != nil {
		return err
	}
	if o.Ask.TopK <= 0 {
		return fmt.Errorf("ask.top-k must be positive")
	}
	if o.Ask.MinScore < 0 || o.Ask.MinScore > 100 {
		return fmt.Errorf("ask.min-score must be between 0 and 100")
	}
	return nil
}

// Complete completes the options.
func (o *Options) Complete() error {
	if err := o.HTTP.Complete(); err != nil {
		return err
	}
	return o.Postgres.Complete()
}

// AskConfig 转换为业务层配置。
func (o *Options) AskConfig() *biz.Config {
	return &biz.Config{
		TopK:                o.Ask.TopK,
		MinScore:            o.Ask.MinScore,
		AnswerCacheTTL:      o.Ask.CacheTTL,
		MaxDescriptionChars: o.Ask.MaxDescriptionChars,
	}
}
