// Package biz implements the extraction pipeline business logic.
package biz

import (
	"context"
	"time"

	"github.com/forge-io/agentforge/internal/extractor/metrics"
	"github.com/forge-io/agentforge/internal/extractor/store"
	"github.com/forge-io/agentforge/internal/model"
	"github.com/forge-io/agentforge/pkg/llm"
	"github.com/forge-io/agentforge/pkg/pool"
	"github.com/forge-io/agentforge/pkg/resilience"
	"github.com/forge-io/agentforge/pkg/scrape"
)

// Fetcher 静态抓取与 URL 解析能力。
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*scrape.FetchResult, error)
	Resolve(ctx context.Context, url string) (string, error)
}

// Renderer 浏览器渲染能力。
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Cache 解析结果缓存能力。
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Thresholds 存储层级评分阈值。必须单调递减。
type Thresholds struct {
	Premium  int
	Standard int
	Basic    int
}

// Config 提取管线配置。
type Config struct {
	// Thresholds 存储层级阈值。
	Thresholds Thresholds

	// TargetScore 层级升级停止的目标分。达到后不再升级内容层级。
	TargetScore int

	// BatchConcurrency 批量提取并发上限。
	BatchConcurrency int

	// PerURLTimeout 批量提取中单个 URL 的超时时间。
	PerURLTimeout time.Duration

	// ResolveConcurrency URL 解析并发上限。
	ResolveConcurrency int

	// ResolveCacheTTL 解析缓存过期时间。
	ResolveCacheTTL time.Duration

	// LLMEnabled 是否启用 LLM 抽取层级。
	LLMEnabled bool
}

// DefaultConfig 返回默认管线配置。
func DefaultConfig() *Config {
	return &Config{
		Thresholds: Thresholds{
			Premium:  85,
			Standard: 60,
			Basic:    35,
		},
		TargetScore:        85,
		BatchConcurrency:   10,
		PerURLTimeout:      60 * time.Second,
		ResolveConcurrency: 20,
		ResolveCacheTTL:    24 * time.Hour,
		LLMEnabled:         true,
	}
}

// ExtractorService 提取服务。
type ExtractorService struct {
	config *Config

	fetcher   Fetcher
	renderer  Renderer
	chat      llm.ChatProvider
	factory   store.Factory
	snapshots store.SnapshotStore
	cache     Cache

	batchPool   *pool.Pool
	resolvePool *pool.Pool

	breaker *resilience.CircuitBreaker
	metrics *metrics.ExtractorMetrics
}

// NewExtractorService 创建提取服务。
// renderer、chat、snapshots、cache 可以为 nil，对应层级或能力被跳过。
func NewExtractorService(
	config *Config,
	fetcher Fetcher,
	renderer Renderer,
	chat llm.ChatProvider,
	factory store.Factory,
	snapshots store.SnapshotStore,
	cache Cache,
) (*ExtractorService, error) {
	if config == nil {
		config = DefaultConfig()
	}

	m := metrics.GetMetrics()

	batchPool, err := pool.New("extract-batch", pool.BatchConfig(config.BatchConcurrency))
	if err != nil {
		return nil, err
	}
	// 解析池按信号量语义工作：池满时提交方阻塞等待，而不是拒绝
	resolvePool, err := pool.New("url-resolve", &pool.Config{
		Capacity:       config.ResolveConcurrency,
		ExpiryDuration: 30 * time.Second,
	})
	if err != nil {
		batchPool.Release()
		return nil, err
	}

	breaker := resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
		MaxFailures:      5,
		Timeout:          60 * time.Second,
		HalfOpenMaxCalls: 1,
		OnStateChange: func(state resilience.CircuitBreakerState) {
			m.RecordCircuitBreakerState(int32(state))
		},
	})

	return &ExtractorService{
		config:      config,
		fetcher:     fetcher,
		renderer:    renderer,
		chat:        chat,
		factory:     factory,
		snapshots:   snapshots,
		cache:       cache,
		batchPool:   batchPool,
		resolvePool: resolvePool,
		breaker:     breaker,
		metrics:     m,
	}, nil
}

// Close releases the worker pools.
func (s *ExtractorService) Close() {
	s.batchPool.Release()
	s.resolvePool.Release()
}

// GetExtraction 查询提取记录。
func (s *ExtractorService) GetExtraction(ctx context.Context, id string) (*model.Extraction, error) {
	return s.factory.Extractions().Get(ctx, id)
}

// GetEvent 查询事件。
func (s *ExtractorService) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	return s.factory.Events().Get(ctx, id)
}

// ListEvents 按条件分页查询事件。
func (s *ExtractorService) ListEvents(ctx context.Context, filter *store.EventFilter, offset, limit int) (*model.EventList, error) {
	count, items, err := s.factory.Events().List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	return &model.EventList{TotalCount: count, Items: items}, nil
}

// Stats 返回指标快照。
func (s *ExtractorService) Stats() map[string]any {
	stats := s.metrics.Stats()
	stats["pools"] = map[string]any{
		"batch":   s.batchPool.Stats(),
		"resolve": s.resolvePool.Stats(),
	}
	return stats
}
