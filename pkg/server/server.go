// Package server 提供基于 gin 的 HTTP 服务器生命周期管理。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	httpoptions "github.com/forge-io/agentforge/pkg/options/http"
)

// Manager HTTP 服务器管理器，负责启动和优雅关停。
type Manager struct {
	mode            string
	httpOpts        *httpoptions.Options
	shutdownTimeout time.Duration

	engine     *gin.Engine
	httpServer *http.Server
}

// Option Manager 配置选项。
type Option func(*Manager)

// WithMode 设置运行模式（debug/release/test）。
func WithMode(mode string) Option {
	return func(m *Manager) {
		if mode != "" {
			m.mode = mode
		}
	}
}

// WithHTTPOptions 设置 HTTP 服务器配置。
func WithHTTPOptions(opts *httpoptions.Options) Option {
	return func(m *Manager) {
		if opts != nil {
			m.httpOpts = opts
		}
	}
}

// WithShutdownTimeout 设置优雅关停超时时间。
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.shutdownTimeout = timeout
		}
	}
}

// NewManager 创建服务器管理器。
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		mode:            gin.ReleaseMode,
		httpOpts:        httpoptions.NewOptions(),
		shutdownTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(m)
	}

	gin.SetMode(m.mode)
	m.engine = gin.New()
	m.engine.Use(Recovery(), RequestID(), AccessLog(), CORS())

	return m
}

// Engine 返回 gin 引擎，用于注册路由。
func (m *Manager) Engine() *gin.Engine {
	return m.engine
}

// Run 启动服务器并阻塞，收到 SIGINT/SIGTERM 后优雅关停。
func (m *Manager) Run() error {
	m.httpServer = &http.Server{
		Addr:         m.httpOpts.Addr,
		Handler:      m.engine,
		ReadTimeout:  m.httpOpts.ReadTimeout,
		WriteTimeout: m.httpOpts.WriteTimeout,
		IdleTimeout:  m.httpOpts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", m.httpOpts.Addr)
		if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		logger.Infow("shutting down server", "signal", sig.String())
	}

	return m.Stop()
}

// Stop 优雅关停 HTTP 服务器。
func (m *Manager) Stop() error {
	if m.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()

	if err := m.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
