package app

import (
	"fmt"

	"github.com/kart-io/logger"

	"github.com/forge-io/agentforge/internal/extractor/biz"
	"github.com/forge-io/agentforge/internal/extractor/handler"
	"github.com/forge-io/agentforge/internal/extractor/router"
	"github.com/forge-io/agentforge/internal/extractor/store"
	"github.com/forge-io/agentforge/pkg/app"
	"github.com/forge-io/agentforge/pkg/component/mongodb"
	"github.com/forge-io/agentforge/pkg/component/postgres"
	"github.com/forge-io/agentforge/pkg/component/redis"
	"github.com/forge-io/agentforge/pkg/llm"
	"github.com/forge-io/agentforge/pkg/scrape"
	"github.com/forge-io/agentforge/pkg/server"

	// Register chat providers
	_ "github.com/forge-io/agentforge/pkg/llm/gemini"
)

const (
	appName        = "forge-extractor"
	appDescription = `Agent Forge Extraction Service

The event extraction service for the Agent Forge platform.

This server provides:
  - Multi-tier content extraction (static, rendered, LLM)
  - Completeness scoring and tiered event storage
  - Batch extraction and short-link resolution`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run runs the extraction service with the given options.
func Run(opts *Options) error {
	printBanner(opts)

	// 1. 初始化日志
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting extraction service...")

	health := make(map[string]func() error)

	// 2. 初始化 PostgreSQL 与存储层
	pgClient, err := postgres.New(opts.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize postgres: %w", err)
	}
	defer pgClient.Close()
	health["postgres"] = pgClient.Health()

	factory := store.NewFactory(pgClient.DB())
	if err := factory.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Store layer initialized")

	// 3. 初始化 Redis 解析缓存（可选）
	var cache biz.Cache
	if opts.Extractor.CacheEnabled {
		redisClient, err := redis.New(opts.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redisClient.Close()
		health["redis"] = redisClient.Health()
		cache = store.NewRedisCache(redisClient, "forge:extractor:")
		logger.Info("Resolution cache initialized")
	}

	// 4. 初始化 MongoDB 快照存储（可选）
	var snapshots store.SnapshotStore
	if opts.Extractor.SnapshotEnabled {
		mongoClient, err := mongodb.New(opts.Mongo)
		if err != nil {
			return fmt.Errorf("failed to initialize mongodb: %w", err)
		}
		defer mongoClient.Close()
		health["mongodb"] = mongoClient.Health()
		snapshots = store.NewSnapshotStore(mongoClient.Database())
		logger.Info("Snapshot store initialized")
	}

	// 5. 初始化抓取客户端与渲染客户端
	fetcher := scrape.NewClient(&scrape.Config{
		Timeout:      opts.Scrape.Timeout,
		RetryCount:   opts.Scrape.RetryCount,
		MaxRedirects: opts.Scrape.MaxRedirects,
		UserAgent:    opts.Scrape.UserAgent,
	})

	var renderer biz.Renderer
	if opts.Browser.Enabled {
		renderer = scrape.NewBrowserClient(&scrape.BrowserConfig{
			BaseURL: opts.Browser.BaseURL,
			Timeout: opts.Browser.Timeout,
			WaitFor: opts.Browser.WaitFor,
		})
		logger.Info("Browser render client initialized")
	}

	// 6. 初始化 LLM 供应商（可选）
	var chat llm.ChatProvider
	if opts.Extractor.LLMEnabled {
		chat, err = llm.NewChatProvider(opts.LLM.Provider, opts.LLM.ToConfigMap())
		if err != nil {
			return fmt.Errorf("failed to initialize llm provider: %w", err)
		}
		logger.Infow("LLM provider initialized", "provider", opts.LLM.Provider, "model", opts.LLM.Model)
	}

	// 7. 初始化 Biz 层
	svc, err := biz.NewExtractorService(opts.PipelineConfig(), fetcher, renderer, chat, factory, snapshots, cache)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor service: %w", err)
	}
	defer svc.Close()
	logger.Info("Extractor service initialized")

	// 8. 初始化 Handler 层
	h := handler.NewExtractorHandler(svc, health)

	// 9. 初始化服务器并注册路由
	mgr := server.NewManager(
		server.WithMode(opts.Mode),
		server.WithHTTPOptions(opts.HTTP),
		server.WithShutdownTimeout(opts.HTTP.ShutdownTimeout),
	)
	router.Register(mgr.Engine(), h)

	// 10. 启动服务器
	logger.Info("Extraction service is ready")
	return mgr.Run()
}

func printBanner(_ *Options) {
	fmt.Printf("Starting %s...\n", appName)
}
