// Package metrics 提供提取服务的业务指标收集。
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ExtractorMetrics 提取服务业务指标。
type ExtractorMetrics struct {
	// 提取任务指标
	extractionsTotal    uint64 // 总提取次数
	extractionsSuccess  uint64 // 成功次数
	extractionsRejected uint64 // 低分拒绝次数
	extractionsFailed   uint64 // 失败次数
	scoreSum            uint64 // 成功任务评分总和（用于均值）

	// 内容层级指标
	tierStatic   uint64 // 静态抓取产出最优结果的次数
	tierRendered uint64 // 浏览器渲染产出最优结果的次数
	tierLLM      uint64 // LLM 抽取产出最优结果的次数

	// 存储层级指标
	storedPremium  uint64
	storedStandard uint64
	storedBasic    uint64

	// 批量任务指标
	batchSubmitted uint64 // 提交到工作池的任务数
	batchRejected  uint64 // 工作池已满被拒绝的任务数

	// URL 解析指标
	resolutionsTotal    uint64 // 总解析次数
	resolutionCacheHits uint64 // 缓存命中次数
	resolutionFailures  uint64 // 解析失败次数

	// LLM 调用指标
	llmCallsTotal   uint64  // LLM 总调用次数
	llmCallsErrors  uint64  // LLM 调用错误次数
	llmCallsRetries uint64  // LLM 重试次数
	llmDuration     float64 // LLM 调用总耗时（秒）

	// 熔断器指标
	circuitBreakerOpens uint64 // 熔断器打开次数
	circuitBreakerState int32  // 熔断器当前状态 (0=closed, 1=open, 2=half-open)

	// 提取耗时
	extractionDuration float64 // 提取总耗时（秒）

	startTime  time.Time
	durationMu sync.Mutex
}

// 全局指标实例。
var (
	globalMetrics *ExtractorMetrics
	metricsOnce   sync.Once
)

// GetMetrics 获取全局指标实例。
func GetMetrics() *ExtractorMetrics {
	metricsOnce.Do(func() {
		globalMetrics = &ExtractorMetrics{
			startTime: time.Now(),
		}
	})
	return globalMetrics
}

// RecordExtraction 记录一次提取任务。
func (m *ExtractorMetrics) RecordExtraction(status string, score int, duration time.Duration) {
	atomic.AddUint64(&m.extractionsTotal, 1)

	switch status {
	case "success":
		atomic.AddUint64(&m.extractionsSuccess, 1)
		atomic.AddUint64(&m.scoreSum, uint64(score))
	case "rejected":
		atomic.AddUint64(&m.extractionsRejected, 1)
	default:
		atomic.AddUint64(&m.extractionsFailed, 1)
	}

	m.durationMu.Lock()
	m.extractionDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordContentTier 记录产出最优结果的内容层级。
func (m *ExtractorMetrics) RecordContentTier(tier string) {
	switch tier {
	case "static":
		atomic.AddUint64(&m.tierStatic, 1)
	case "rendered":
		atomic.AddUint64(&m.tierRendered, 1)
	case "llm":
		atomic.AddUint64(&m.tierLLM, 1)
	}
}

// RecordStorageTier 记录写入的存储层级。
func (m *ExtractorMetrics) RecordStorageTier(tier string) {
	switch tier {
	case "premium":
		atomic.AddUint64(&m.storedPremium, 1)
	case "standard":
		atomic.AddUint64(&m.storedStandard, 1)
	case "basic":
		atomic.AddUint64(&m.storedBasic, 1)
	}
}

// RecordBatchSubmit 记录批量任务提交结果。
func (m *ExtractorMetrics) RecordBatchSubmit(rejected bool) {
	if rejected {
		atomic.AddUint64(&m.batchRejected, 1)
		return
	}
	atomic.AddUint64(&m.batchSubmitted, 1)
}

// RecordResolution 记录一次 URL 解析。
func (m *ExtractorMetrics) RecordResolution(cacheHit bool, err error) {
	atomic.AddUint64(&m.resolutionsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.resolutionFailures, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.resolutionCacheHits, 1)
	}
}

// RecordLLMCall 记录 LLM 调用。
func (m *ExtractorMetrics) RecordLLMCall(duration time.Duration, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordLLMRetry 记录 LLM 重试。
func (m *ExtractorMetrics) RecordLLMRetry() {
	atomic.AddUint64(&m.llmCallsRetries, 1)
}

// RecordCircuitBreakerState 记录熔断器状态变化。
func (m *ExtractorMetrics) RecordCircuitBreakerState(state int32) {
	if state == 1 {
		atomic.AddUint64(&m.circuitBreakerOpens, 1)
	}
	atomic.StoreInt32(&m.circuitBreakerState, state)
}

// Stats 返回 JSON 友好的指标快照。
func (m *ExtractorMetrics) Stats() map[string]any {
	total := atomic.LoadUint64(&m.extractionsTotal)
	success := atomic.LoadUint64(&m.extractionsSuccess)
	scoreSum := atomic.LoadUint64(&m.scoreSum)

	avgScore := 0.0
	if success > 0 {
		avgScore = float64(scoreSum) / float64(success)
	}

	m.durationMu.Lock()
	extractionDuration := m.extractionDuration
	llmDuration := m.llmDuration
	m.durationMu.Unlock()

	return map[string]any{
		"extractions": map[string]any{
			"total":            total,
			"success":          success,
			"rejected":         atomic.LoadUint64(&m.extractionsRejected),
			"failed":           atomic.LoadUint64(&m.extractionsFailed),
			"avg_score":        avgScore,
			"duration_seconds": extractionDuration,
		},
		"content_tiers": map[string]any{
			"static":   atomic.LoadUint64(&m.tierStatic),
			"rendered": atomic.LoadUint64(&m.tierRendered),
			"llm":      atomic.LoadUint64(&m.tierLLM),
		},
		"storage_tiers": map[string]any{
			"premium":  atomic.LoadUint64(&m.storedPremium),
			"standard": atomic.LoadUint64(&m.storedStandard),
			"basic":    atomic.LoadUint64(&m.storedBasic),
		},
		"batch": map[string]any{
			"submitted": atomic.LoadUint64(&m.batchSubmitted),
			"rejected":  atomic.LoadUint64(&m.batchRejected),
		},
		"resolutions": map[string]any{
			"total":      atomic.LoadUint64(&m.resolutionsTotal),
			"cache_hits": atomic.LoadUint64(&m.resolutionCacheHits),
			"failures":   atomic.LoadUint64(&m.resolutionFailures),
		},
		"llm": map[string]any{
			"calls":            atomic.LoadUint64(&m.llmCallsTotal),
			"errors":           atomic.LoadUint64(&m.llmCallsErrors),
			"retries":          atomic.LoadUint64(&m.llmCallsRetries),
			"duration_seconds": llmDuration,
			"circuit_breaker": map[string]any{
				"opens": atomic.LoadUint64(&m.circuitBreakerOpens),
				"state": atomic.LoadInt32(&m.circuitBreakerState),
			},
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Export 导出 Prometheus 格式指标。
func (m *ExtractorMetrics) Export(namespace, subsystem string) string {
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

	counter("extractions_total", "Total number of extraction jobs.", atomic.LoadUint64(&m.extractionsTotal))
	counter("extractions_success_total", "Number of successful extractions.", atomic.LoadUint64(&m.extractionsSuccess))
	counter("extractions_rejected_total", "Number of extractions rejected below threshold.", atomic.LoadUint64(&m.extractionsRejected))
	counter("extractions_failed_total", "Number of failed extractions.", atomic.LoadUint64(&m.extractionsFailed))

	success := atomic.LoadUint64(&m.extractionsSuccess)
	avgScore := 0.0
	if success > 0 {
		avgScore = float64(atomic.LoadUint64(&m.scoreSum)) / float64(success)
	}
	gauge("extractions_avg_score", "Average completeness score of successful extractions (0-100).", avgScore)

	counter("content_tier_static_total", "Extractions won by the static tier.", atomic.LoadUint64(&m.tierStatic))
	counter("content_tier_rendered_total", "Extractions won by the rendered tier.", atomic.LoadUint64(&m.tierRendered))
	counter("content_tier_llm_total", "Extractions won by the LLM tier.", atomic.LoadUint64(&m.tierLLM))

	counter("storage_tier_premium_total", "Events stored at premium tier.", atomic.LoadUint64(&m.storedPremium))
	counter("storage_tier_standard_total", "Events stored at standard tier.", atomic.LoadUint64(&m.storedStandard))
	counter("storage_tier_basic_total", "Extractions stored at basic tier.", atomic.LoadUint64(&m.storedBasic))

	counter("batch_submitted_total", "Batch tasks accepted by the worker pool.", atomic.LoadUint64(&m.batchSubmitted))
	counter("batch_rejected_total", "Batch tasks rejected by a full worker pool.", atomic.LoadUint64(&m.batchRejected))

	counter("resolutions_total", "Total URL resolutions.", atomic.LoadUint64(&m.resolutionsTotal))
	counter("resolutions_cache_hits_total", "URL resolution cache hits.", atomic.LoadUint64(&m.resolutionCacheHits))
	counter("resolutions_failures_total", "URL resolution failures.", atomic.LoadUint64(&m.resolutionFailures))

	counter("llm_calls_total", "Total LLM calls.", atomic.LoadUint64(&m.llmCallsTotal))
	counter("llm_calls_errors_total", "LLM call errors.", atomic.LoadUint64(&m.llmCallsErrors))
	counter("llm_calls_retries_total", "LLM call retries.", atomic.LoadUint64(&m.llmCallsRetries))
	counter("circuit_breaker_opens_total", "Times the LLM circuit breaker opened.", atomic.LoadUint64(&m.circuitBreakerOpens))
	gauge("circuit_breaker_state", "LLM circuit breaker state (0=closed, 1=open, 2=half-open).", float64(atomic.LoadInt32(&m.circuitBreakerState)))

	m.durationMu.Lock()
	extractionDuration := m.extractionDuration
	llmDuration := m.llmDuration
	m.durationMu.Unlock()

	gauge("extraction_duration_seconds_total", "Total extraction duration.", extractionDuration)
	gauge("llm_duration_seconds_total", "Total LLM call duration.", llmDuration)
	gauge("uptime_seconds", "Service uptime.", time.Since(m.startTime).Seconds())

	return sb.String()
}

// Reset 重置全局指标（仅用于测试）。
func (m *ExtractorMetrics) Reset() {
	metricsOnce = sync.Once{}
	globalMetrics = nil
}
