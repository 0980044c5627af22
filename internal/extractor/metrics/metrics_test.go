package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRecordExtractionAndStats(t *testing.T) {
	m := GetMetrics()
	m.Reset()
	m = GetMetrics()

	m.RecordExtraction("success", 90, 100*time.Millisecond)
	m.RecordExtraction("success", 70, 200*time.Millisecond)
	m.RecordExtraction("rejected", 20, 50*time.Millisecond)
	m.RecordExtraction("failed", 0, 10*time.Millisecond)

	stats := m.Stats()
	extractions := stats["extractions"].(map[string]any)
	if extractions["total"].(uint64) != 4 {
		t.Errorf("expected 4 extractions, got %v", extractions["total"])
	}
	if extractions["success"].(uint64) != 2 {
		t.Errorf("expected 2 successes, got %v", extractions["success"])
	}
	if extractions["rejected"].(uint64) != 1 {
		t.Errorf("expected 1 rejection, got %v", extractions["rejected"])
	}
	if avg := extractions["avg_score"].(float64); avg != 80.0 {
		t.Errorf("expected avg score 80, got %v", avg)
	}
}

func TestRecordTiersAndBatch(t *testing.T) {
	m := GetMetrics()
	m.Reset()
	m = GetMetrics()

	m.RecordContentTier("static")
	m.RecordContentTier("llm")
	m.RecordStorageTier("premium")
	m.RecordBatchSubmit(false)
	m.RecordBatchSubmit(true)

	stats := m.Stats()
	tiers := stats["content_tiers"].(map[string]any)
	if tiers["static"].(uint64) != 1 || tiers["llm"].(uint64) != 1 {
		t.Errorf("unexpected content tier counts: %v", tiers)
	}

	batch := stats["batch"].(map[string]any)
	if batch["submitted"].(uint64) != 1 || batch["rejected"].(uint64) != 1 {
		t.Errorf("unexpected batch counts: %v", batch)
	}
}

func TestRecordResolutionAndLLM(t *testing.T) {
	m := GetMetrics()
	m.Reset()
	m = GetMetrics()

	m.RecordResolution(true, nil)
	m.RecordResolution(false, nil)
	m.RecordResolution(false, errors.New("boom"))
	m.RecordLLMCall(time.Second, nil)
	m.RecordLLMCall(time.Second, errors.New("boom"))
	m.RecordLLMRetry()
	m.RecordCircuitBreakerState(1)

	stats := m.Stats()
	resolutions := stats["resolutions"].(map[string]any)
	if resolutions["total"].(uint64) != 3 {
		t.Errorf("expected 3 resolutions, got %v", resolutions["total"])
	}
	if resolutions["cache_hits"].(uint64) != 1 {
		t.Errorf("expected 1 cache hit, got %v", resolutions["cache_hits"])
	}
	if resolutions["failures"].(uint64) != 1 {
		t.Errorf("expected 1 failure, got %v", resolutions["failures"])
	}

	llm := stats["llm"].(map[string]any)
	if llm["calls"].(uint64) != 2 || llm["errors"].(uint64) != 1 || llm["retries"].(uint64) != 1 {
		t.Errorf("unexpected llm counts: %v", llm)
	}
	cb := llm["circuit_breaker"].(map[string]any)
	if cb["opens"].(uint64) != 1 || cb["state"].(int32) != 1 {
		t.Errorf("unexpected circuit breaker state: %v", cb)
	}
}

func TestExport(t *testing.T) {
	m := GetMetrics()
	m.Reset()
	m = GetMetrics()

	m.RecordExtraction("success", 88, 100*time.Millisecond)
	m.RecordContentTier("rendered")

	out := m.Export("forge", "extractor")

	// 注意：Prometheus 格式可能包含标签和其他信息
	if !strings.Contains(out, "forge_extractor_extractions_total 1") {
		t.Errorf("expected extractions_total in output:\n%s", out)
	}
	if !strings.Contains(out, "forge_extractor_content_tier_rendered_total 1") {
		t.Errorf("expected content_tier_rendered_total in output:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE forge_extractor_extractions_avg_score gauge") {
		t.Errorf("expected avg_score gauge TYPE line in output")
	}
}
