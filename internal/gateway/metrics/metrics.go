// Package metrics 提供网关服务的业务指标收集。
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// GatewayMetrics 网关服务业务指标。
type GatewayMetrics struct {
	// 问答指标
	asksTotal     uint64  // 总提问次数
	askCacheHits  uint64  // 回答缓存命中次数
	askFailures   uint64  // 回答失败次数
	askDuration   float64 // 回答总耗时（秒），不含缓存命中
	contextEvents uint64  // 作为上下文提供给模型的事件总数

	// 事件查询指标
	eventsListed  uint64 // 列表查询次数
	eventsFetched uint64 // 详情查询次数

	startTime  time.Time
	durationMu sync.Mutex
}

// 全局指标实例。
var (
	globalMetrics *GatewayMetrics
	metricsOnce   sync.Once
)

// GetMetrics 获取全局指标实例。
func GetMetrics() *GatewayMetrics {
	metricsOnce.Do(func() {
		globalMetrics = &GatewayMetrics{
			startTime: time.Now(),
		}
	})
	return globalMetrics
}

// RecordAsk 记录一次问答。
func (m *GatewayMetrics) RecordAsk(cacheHit bool, contextEvents int, duration time.Duration, err error) {
	atomic.AddUint64(&m.asksTotal, 1)

	if err != nil {
		atomic.AddUint64(&m.askFailures, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.askCacheHits, 1)
		return
	}

	atomic.AddUint64(&m.contextEvents, uint64(contextEvents))
	m.durationMu.Lock()
	m.askDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordEventList 记录一次列表查询。
func (m *GatewayMetrics) RecordEventList() {
	atomic.AddUint64(&m.eventsListed, 1)
}

// RecordEventGet 记录一次详情查询。
func (m *GatewayMetrics) RecordEventGet() {
	atomic.AddUint64(&m.eventsFetched, 1)
}

// Stats 返回 JSON 友好的指标快照。
func (m *GatewayMetrics) Stats() map[string]any {
	m.durationMu.Lock()
	askDuration := m.askDuration
	m.durationMu.Unlock()

	return map[string]any{
		"ask": map[string]any{
			"total":            atomic.LoadUint64(&m.asksTotal),
			"cache_hits":       atomic.LoadUint64(&m.askCacheHits),
			"failures":         atomic.LoadUint64(&m.askFailures),
			"context_events":   atomic.LoadUint64(&m.contextEvents),
			"duration_seconds": askDuration,
		},
		"events": map[string]any{
			"listed":  atomic.LoadUint64(&m.eventsListed),
			"fetched": atomic.LoadUint64(&m.eventsFetched),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Export 导出 Prometheus 格式指标。
func (m *GatewayMetrics) Export(namespace, subsystem string) string {
	var sb strings.Builder
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	counter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}
	gauge := func(name, help string, value float64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s gauge\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %.6f\n\n", prefix, name, value))
	}

	counter("asks_total", "Total questions answered.", atomic.LoadUint64(&m.asksTotal))
	counter("asks_cache_hits_total", "Questions served from the answer cache.", atomic.LoadUint64(&m.askCacheHits))
	counter("asks_failures_total", "Questions that failed to answer.", atomic.LoadUint64(&m.askFailures))
	counter("ask_context_events_total", "Events supplied as model context.", atomic.LoadUint64(&m.contextEvents))

	counter("events_listed_total", "Event list queries.", atomic.LoadUint64(&m.eventsListed))
	counter("events_fetched_total", "Event detail queries.", atomic.LoadUint64(&m.eventsFetched))

	m.durationMu.Lock()
	askDuration := m.askDuration
	m.durationMu.Unlock()

	gauge("ask_duration_seconds_total", "Total answer generation duration.", askDuration)
	gauge("uptime_seconds", "Service uptime.", time.Since(m.startTime).Seconds())

	return sb.String()
}

// Reset 重置全局指标（仅用于测试）。
func (m *GatewayMetrics) Reset() {
	metricsOnce = sync.Once{}
	globalMetrics = nil
}
