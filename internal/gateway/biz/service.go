// Package biz provides the gateway's business logic.
package biz

import (
	"context"
	"time"

	"github.com/forge-io/agentforge/internal/gateway/metrics"
	"github.com/forge-io/agentforge/internal/gateway/store"
	"github.com/forge-io/agentforge/internal/model"
	"github.com/forge-io/agentforge/pkg/errors"
	"github.com/forge-io/agentforge/pkg/llm"
)

// Cache 键值缓存接口，用于回答缓存。
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Config 网关业务配置。
type Config struct {
	// TopK 每次回答检索的事件数量。
	TopK int

	// MinScore 作为上下文的事件最低评分。
	MinScore int

	// AnswerCacheTTL 回答缓存过期时间。
	AnswerCacheTTL time.Duration

	// MaxDescriptionChars 单个事件描述在上下文中的最大长度。
	MaxDescriptionChars int
}

// DefaultConfig 返回默认网关配置。
func DefaultConfig() *Config {
	return &Config{
		TopK:                10,
		MinScore:            60,
		AnswerCacheTTL:      1 * time.Hour,
		MaxDescriptionChars: 300,
	}
}

// GatewayService 网关业务服务。
type GatewayService struct {
	config  *Config
	reader  store.EventReader
	chat    llm.ChatProvider
	cache   Cache
	metrics *metrics.GatewayMetrics
}

// NewGatewayService 创建网关服务。chat 与 cache 可以为 nil，对应能力被跳过。
func NewGatewayService(config *Config, reader store.EventReader, chat llm.ChatProvider, cache Cache) *GatewayService {
	if config == nil {
		config = DefaultConfig()
	}
	return &GatewayService{
		config:  config,
		reader:  reader,
		chat:    chat,
		cache:   cache,
		metrics: metrics.GetMetrics(),
	}
}

// ListEvents 分页查询事件。
func (s *GatewayService) ListEvents(ctx context.Context, filter *store.EventFilter, offset, limit int) (*model.EventList, error) {
	s.metrics.RecordEventList()

	count, items, err := s.reader.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &model.EventList{TotalCount: count, Items: items}, nil
}

// GetEvent 查询事件详情。
func (s *GatewayService) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	s.metrics.RecordEventGet()
	return s.reader.Get(ctx, id)
}

// Stats 返回网关运行指标。
func (s *GatewayService) Stats() map[string]any {
	return s.metrics.Stats()
}
