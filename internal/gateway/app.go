package app

import (
	"fmt"

	"github.com/kart-io/logger"

	"github.com/forge-io/agentforge/internal/gateway/biz"
	"github.com/forge-io/agentforge/internal/gateway/handler"
	"github.com/forge-io/agentforge/internal/gateway/router"
	"github.com/forge-io/agentforge/internal/gateway/store"
	"github.com/forge-io/agentforge/pkg/app"
	"github.com/forge-io/agentforge/pkg/component/postgres"
	"github.com/forge-io/agentforge/pkg/component/redis"
	"github.com/forge-io/agentforge/pkg/llm"
	"github.com/forge-io/agentforge/pkg/server"

	// Register chat providers
	_ "github.com/forge-io/agentforge/pkg/llm/gemini"
)

const (
	appName        = "forge-gateway"
	appDescription = `Agent Forge Gateway

The read-side intelligence API for the Agent Forge platform.

This server provides:
  - Event listing and detail queries over stored events
  - Question answering grounded on recent events
  - Redis-backed answer caching`
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

// Run runs the gateway service with the given options.
func Run(opts *Options) error {
	printBanner(opts)

	// 1. 初始化日志
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting gateway service...")

	health := make(map[string]func() error)

	// 2. 初始化 PostgreSQL 与只读存储
	pgClient, err := postgres.New(opts.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize postgres: %w", err)
	}
	defer pgClient.Close()
	health["postgres"] = pgClient.Health()

	reader := store.NewEventReader(pgClient.DB())
	logger.Info("Event reader initialized")

	// 3. 初始化 Redis 回答缓存（可选）
	var cache biz.Cache
	if opts.Ask.CacheEnabled {
		redisClient, err := redis.New(opts.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redisClient.Close()
		health["redis"] = redisClient.Health()
		cache = store.NewAnswerCache(redisClient, "forge:gateway:ask:")
		logger.Info("Answer cache initialized")
	}

	// 4. 初始化 LLM 供应商
	chat, err := llm.NewChatProvider(opts.LLM.Provider, opts.LLM.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to initialize llm provider: %w", err)
	}
	logger.Infow("LLM provider initialized", "provider", opts.LLM.Provider, "model", opts.LLM.Model)

	// 5. 初始化 Biz 层
	svc := biz.NewGatewayService(opts.AskConfig(), reader, chat, cache)
	logger.Info("Gateway service initialized")

	// 6. 初始化 Handler 层
	h := handler.NewGatewayHandler(svc, health)

	// 7. 初始化服务器并注册路由
	mgr := server.NewManager(
		server.WithMode(opts.Mode),
		server.WithHTTPOptions(opts.HTTP),
		server.WithShutdownTimeout(opts.HTTP.ShutdownTimeout),
	)
	router.Register(mgr.Engine(), h)

	// 8. 启动服务器
	logger.Info("Gateway service is ready")
	return mgr.Run()
}

func printBanner(_ *Options) {
	fmt.Printf("Starting %s...\n", appName)
}
