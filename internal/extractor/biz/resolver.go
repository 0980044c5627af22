package biz

import (
	"context"
	"sync"

	"github.com/kart-io/logger"
)

// resolveCachePrefix 解析缓存键前缀。
const resolveCachePrefix = "resolve:"

// Resolution 单个 URL 的解析结果。
type Resolution struct {
	URL      string `json:"url"`
	FinalURL string `json:"final_url"`
	CacheHit bool   `json:"cache_hit"`
	Error    string `json:"error,omitempty"`
}

// ResolveBatch 并发解析一批 URL 的最终地址。
// 命中缓存的直接返回；解析失败时回退到原始 URL 并继续处理其余条目。
func (s *ExtractorService) ResolveBatch(ctx context.Context, urls []string) []*Resolution {
	results := make([]*Resolution, len(urls))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, rawURL := range urls {
		i, rawURL := i, rawURL

		wg.Add(1)
		err := s.resolvePool.Submit(func() {
			defer wg.Done()
			res := s.resolveOne(ctx, rawURL)
			mu.Lock()
			results[i] = res
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			s.metrics.RecordResolution(false, err)
			mu.Lock()
			results[i] = &Resolution{URL: rawURL, FinalURL: rawURL, Error: err.Error()}
			mu.Unlock()
		}
	}

	wg.Wait()
	return results
}

func (s *ExtractorService) resolveOne(ctx context.Context, rawURL string) *Resolution {
	cacheKey := resolveCachePrefix + rawURL

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			s.metrics.RecordResolution(true, nil)
			return &Resolution{URL: rawURL, FinalURL: cached, CacheHit: true}
		}
	}

	finalURL, err := s.fetcher.Resolve(ctx, rawURL)
	if err != nil {
		s.metrics.RecordResolution(false, err)
		logger.Warnw("url resolution failed", "url", rawURL, "error", err.Error())
		return &Resolution{URL: rawURL, FinalURL: rawURL, Error: err.Error()}
	}

	s.metrics.RecordResolution(false, nil)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, finalURL, s.config.ResolveCacheTTL); err != nil {
			logger.Warnw("resolution cache write failed", "url", rawURL, "error", err.Error())
		}
	}

	return &Resolution{URL: rawURL, FinalURL: finalURL}
}
