package biz

import (
	"context"
	"sync"

	"github.com/kart-io/logger"

	"github.com/forge-io/agentforge/pkg/errors"
	"github.com/forge-io/agentforge/pkg/pool"
)

// Batch item status values.
const (
	BatchStatusDone      = "done"
	BatchStatusFailed    = "failed"
	BatchStatusRejected  = "rejected"
	BatchStatusCancelled = "cancelled"
)

// BatchItem 批量提取中单个 URL 的结果。
type BatchItem struct {
	URL         string `json:"url"`
	JobID       string `json:"job_id,omitempty"`
	Status      string `json:"status"`
	Score       int    `json:"score,omitempty"`
	StorageTier string `json:"storage_tier,omitempty"`
	EventID     uint64 `json:"event_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BatchResult 批量提取结果。
type BatchResult struct {
	Total     int          `json:"total"`
	Completed int          `json:"completed"`
	Items     []*BatchItem `json:"items"`
}

// ExtractBatch 并发提取多个 URL，受工作池容量约束。
// 池满时任务被拒绝而不是排队；上下文取消时返回已完成的结果。
func (s *ExtractorService) ExtractBatch(ctx context.Context, urls []string) *BatchResult {
	result := &BatchResult{
		Total: len(urls),
		Items: make([]*BatchItem, len(urls)),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	finalized := false

	// finalized 置位后结果已交还调用方，迟到的写入被丢弃
	setItem := func(i int, item *BatchItem) {
		mu.Lock()
		if !finalized {
			result.Items[i] = item
		}
		mu.Unlock()
	}

	for i, rawURL := range urls {
		i, rawURL := i, rawURL

		wg.Add(1)
		err := s.batchPool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				setItem(i, &BatchItem{URL: rawURL, Status: BatchStatusCancelled})
				return
			}

			itemCtx, cancel := context.WithTimeout(ctx, s.config.PerURLTimeout)
			defer cancel()

			setItem(i, s.extractBatchItem(itemCtx, rawURL))
		})
		if err != nil {
			wg.Done()
			s.metrics.RecordBatchSubmit(true)
			logger.Warnw("batch submit rejected", "url", rawURL, "error", err.Error())
			msg := err.Error()
			if err == pool.ErrPoolFull {
				msg = errors.ErrBatchPoolFull.Error()
			}
			setItem(i, &BatchItem{URL: rawURL, Status: BatchStatusFailed, Error: msg})
			continue
		}
		s.metrics.RecordBatchSubmit(false)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// 已取消：返回当前已完成的条目，未完成的标记为 cancelled
	}

	mu.Lock()
	defer mu.Unlock()
	finalized = true
	for i, item := range result.Items {
		if item == nil {
			result.Items[i] = &BatchItem{URL: urls[i], Status: BatchStatusCancelled}
			continue
		}
		if item.Status == BatchStatusDone {
			result.Completed++
		}
	}
	return result
}

func (s *ExtractorService) extractBatchItem(ctx context.Context, rawURL string) *BatchItem {
	res, err := s.Extract(ctx, rawURL)
	if err != nil {
		return &BatchItem{URL: rawURL, Status: BatchStatusFailed, Error: err.Error()}
	}

	item := &BatchItem{
		URL:         rawURL,
		JobID:       res.JobID,
		Score:       res.Extraction.Score,
		StorageTier: res.Extraction.StorageTier,
		Status:      BatchStatusDone,
	}
	if res.Extraction.StorageTier == StorageTierReject {
		item.Status = BatchStatusRejected
	}
	if res.Event != nil {
		item.EventID = res.Event.ID
	}
	return item
}
