package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/forge-io/agentforge/internal/extractor/store"
	"github.com/forge-io/agentforge/internal/model"
	"github.com/forge-io/agentforge/pkg/errors"
	"github.com/forge-io/agentforge/pkg/id"
	"github.com/forge-io/agentforge/pkg/scrape"
)

// Content tier names.
const (
	ContentTierStatic   = "static"
	ContentTierRendered = "rendered"
	ContentTierLLM      = "llm"
)

// ExtractResult 一次提取任务的结果。
type ExtractResult struct {
	JobID      string            `json:"job_id"`
	Event      *model.Event      `json:"event,omitempty"`
	Extraction *model.Extraction `json:"extraction"`
}

// tierResult 单个内容层级的评估结果。
type tierResult struct {
	tier  string
	draft *Draft
	score int
}

// Extract 对单个 URL 运行完整提取管线。
func (s *ExtractorService) Extract(ctx context.Context, rawURL string) (*ExtractResult, error) {
	if err := scrape.ValidateURL(rawURL); err != nil {
		return nil, errors.ErrInvalidURL.WithCause(err)
	}

	jobID := id.NewULID()
	start := time.Now()
	platform := scrape.DetectPlatform(rawURL)
	profile := scrape.ProfileFor(platform)

	logger.Infow("extraction started",
		"job_id", jobID,
		"url", rawURL,
		"platform", string(platform),
	)

	finalURL := rawURL
	var best *tierResult
	var bestHTML string
	var pageText string
	var lastErr error

	// 层级 1：静态抓取
	fetchRes, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		lastErr = err
		logger.Warnw("static tier failed", "job_id", jobID, "error", err.Error())
	} else {
		finalURL = fetchRes.FinalURL
		if result, page := s.evaluateHTML(fetchRes.HTML, finalURL, profile, ContentTierStatic); result != nil {
			best = result
			bestHTML = fetchRes.HTML
			pageText = page.Text
		}
	}

	// 层级 2：浏览器渲染
	if s.renderer != nil && s.needsEscalation(best, profile) {
		html, err := s.renderer.Render(ctx, rawURL)
		if err != nil {
			lastErr = err
			logger.Warnw("rendered tier failed", "job_id", jobID, "error", err.Error())
		} else if result, page := s.evaluateHTML(html, finalURL, profile, ContentTierRendered); result != nil {
			if best == nil || result.score > best.score {
				best = result
				bestHTML = html
			}
			if len(page.Text) > len(pageText) {
				pageText = page.Text
			}
		}
	}

	// 层级 3：LLM 抽取
	if s.config.LLMEnabled && s.chat != nil && pageText != "" &&
		(best == nil || best.score < s.config.TargetScore) {
		draft, err := s.extractWithLLM(ctx, pageText)
		if err != nil {
			lastErr = err
			logger.Warnw("llm tier failed", "job_id", jobID, "error", err.Error())
		} else if score := draft.Score(); best == nil || score > best.score {
			best = &tierResult{tier: ContentTierLLM, draft: draft, score: score}
		}
	}

	duration := time.Since(start)

	// 所有层级都没有产出
	if best == nil {
		extraction := &model.Extraction{
			ID:         jobID,
			URL:        rawURL,
			FinalURL:   finalURL,
			Platform:   string(platform),
			Status:     model.ExtractionStatusFailed,
			DurationMs: duration.Milliseconds(),
		}
		if lastErr != nil {
			extraction.Error = lastErr.Error()
		}
		s.metrics.RecordExtraction(model.ExtractionStatusFailed, 0, duration)
		if err := s.factory.Extractions().Create(ctx, extraction); err != nil {
			logger.Errorw("failed to persist extraction record", "job_id", jobID, "error", err.Error())
		}
		return nil, errors.ErrExtractionFailed.WithCause(lastErr)
	}

	storageTier := s.config.Thresholds.StorageTierFor(best.score)
	s.metrics.RecordContentTier(best.tier)
	s.metrics.RecordStorageTier(storageTier)

	extraction := &model.Extraction{
		ID:          jobID,
		URL:         rawURL,
		FinalURL:    finalURL,
		Platform:    string(platform),
		ContentTier: best.tier,
		StorageTier: storageTier,
		Score:       best.score,
		Status:      model.ExtractionStatusSuccess,
		DurationMs:  duration.Milliseconds(),
	}

	result := &ExtractResult{JobID: jobID, Extraction: extraction}

	if storageTier == StorageTierReject {
		extraction.Status = model.ExtractionStatusRejected
		s.metrics.RecordExtraction(model.ExtractionStatusRejected, best.score, duration)
		if err := s.factory.Extractions().Create(ctx, extraction); err != nil {
			return nil, errors.ErrDatabase.WithCause(err)
		}
		logger.Infow("extraction rejected",
			"job_id", jobID,
			"score", best.score,
		)
		return result, nil
	}

	// premium/standard 写入事件表；basic 只保留提取记录
	if storageTier == StorageTierPremium || storageTier == StorageTierStandard {
		event := s.buildEvent(best.draft, finalURL, string(platform), storageTier, best.score)
		if err := s.factory.Events().Upsert(ctx, event); err != nil {
			return nil, errors.ErrDatabase.WithCause(err)
		}
		extraction.EventID = event.ID
		result.Event = event

		// premium 层级归档原始 HTML 快照
		if storageTier == StorageTierPremium && s.snapshots != nil && bestHTML != "" {
			snapshot := &store.Snapshot{
				JobID:     jobID,
				URL:       rawURL,
				FinalURL:  finalURL,
				Platform:  string(platform),
				HTML:      bestHTML,
				FetchedAt: time.Now(),
			}
			if err := s.snapshots.Save(ctx, snapshot); err != nil {
				// 快照归档失败不阻断主流程
				logger.Warnw("snapshot archive failed", "job_id", jobID, "error", err.Error())
			}
		}
	}

	s.metrics.RecordExtraction(model.ExtractionStatusSuccess, best.score, duration)
	if err := s.factory.Extractions().Create(ctx, extraction); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	logger.Infow("extraction completed",
		"job_id", jobID,
		"content_tier", best.tier,
		"storage_tier", storageTier,
		"score", best.score,
		"duration_ms", duration.Milliseconds(),
	)

	return result, nil
}

// evaluateHTML 解析 HTML 并评估该层级的结果。
func (s *ExtractorService) evaluateHTML(html, baseURL string, profile *scrape.Profile, tier string) (*tierResult, *scrape.Page) {
	page, err := scrape.ParsePage(html, baseURL)
	if err != nil {
		logger.Warnw("page parse failed", "tier", tier, "error", err.Error())
		return nil, nil
	}

	draft := draftFromPage(page, profile)
	return &tierResult{
		tier:  tier,
		draft: draft,
		score: draft.Score(),
	}, page
}

// needsEscalation 判断是否需要升级到下一内容层级。
func (s *ExtractorService) needsEscalation(best *tierResult, profile *scrape.Profile) bool {
	if best == nil {
		return true
	}
	// JS 渲染平台的静态结果不可信，无论评分都升级
	if profile.RequiresRender && best.tier == ContentTierStatic {
		return true
	}
	return best.score < s.config.TargetScore
}

// buildEvent 将草稿转换为事件模型。
func (s *ExtractorService) buildEvent(draft *Draft, sourceURL, platform, storageTier string, score int) *model.Event {
	return &model.Event{
		Name:            draft.Name,
		Description:     draft.Description,
		StartTime:       draft.StartTime,
		EndTime:         draft.EndTime,
		Location:        draft.Location,
		Organizer:       draft.Organizer,
		Speakers:        model.StringList(draft.Speakers),
		RegistrationURL: draft.RegistrationURL,
		ImageURL:        draft.ImageURL,
		SourceURL:       sourceURL,
		Platform:        platform,
		StorageTier:     storageTier,
		Score:           score,
	}
}
