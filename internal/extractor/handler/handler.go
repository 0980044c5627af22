// Package handler provides HTTP handlers for the extractor service.
package handler

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forge-io/agentforge/internal/extractor/biz"
	"github.com/forge-io/agentforge/internal/extractor/metrics"
	"github.com/forge-io/agentforge/internal/extractor/store"
	"github.com/forge-io/agentforge/internal/model"
	"github.com/forge-io/agentforge/pkg/errors"
	"github.com/forge-io/agentforge/pkg/response"
)

// Service 提取服务的业务能力。
type Service interface {
	Extract(ctx context.Context, url string) (*biz.ExtractResult, error)
	ExtractBatch(ctx context.Context, urls []string) *biz.BatchResult
	ResolveBatch(ctx context.Context, urls []string) []*biz.Resolution
	GetExtraction(ctx context.Context, id string) (*model.Extraction, error)
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
	ListEvents(ctx context.Context, filter *store.EventFilter, offset, limit int) (*model.EventList, error)
	Stats() map[string]any
}

// maxBatchSize 单次批量请求的 URL 数量上限。
const maxBatchSize = 100

// ExtractorHandler handles extraction HTTP requests.
type ExtractorHandler struct {
	service Service
	health  map[string]func() error
}

// NewExtractorHandler creates a new ExtractorHandler.
// health holds named component health checks for the healthz endpoint.
func NewExtractorHandler(service Service, health map[string]func() error) *ExtractorHandler {
	return &ExtractorHandler{
		service: service,
		health:  health,
	}
}

// ExtractRequest 单个提取请求。
type ExtractRequest struct {
	URL string `json:"url" binding:"required"`

	// Strict 为 true 时，低分拒绝作为错误返回。
	Strict bool `json:"strict"`
}

// Extract 对单个 URL 运行提取管线。
func (h *ExtractorHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrInvalidParam.WithCause(err))
		return
	}

	result, err := h.service.Extract(c.Request.Context(), req.URL)
	if err != nil {
		response.Fail(c, err)
		return
	}

	if req.Strict && result.Extraction.Status == model.ExtractionStatusRejected {
		response.Fail(c, errors.ErrExtractionRejected)
		return
	}

	response.OK(c, result)
}

// BatchRequest 批量提取请求。
type BatchRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
}

// ExtractBatch 批量提取。
func (h *ExtractorHandler) ExtractBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrInvalidParam.WithCause(err))
		return
	}
	if len(req.URLs) > maxBatchSize {
		response.Fail(c, errors.ErrInvalidParam.WithMessagef("at most %d urls per batch", maxBatchSize))
		return
	}

	result := h.service.ExtractBatch(c.Request.Context(), req.URLs)
	response.OK(c, result)
}

// ResolveRequest URL 解析请求。
type ResolveRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
}

// Resolve 批量解析 URL 最终地址。
func (h *ExtractorHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrInvalidParam.WithCause(err))
		return
	}
	if len(req.URLs) > maxBatchSize {
		response.Fail(c, errors.ErrInvalidParam.WithMessagef("at most %d urls per batch", maxBatchSize))
		return
	}

	results := h.service.ResolveBatch(c.Request.Context(), req.URLs)
	response.OK(c, gin.H{"resolutions": results})
}

// GetExtraction 查询提取记录。
func (h *ExtractorHandler) GetExtraction(c *gin.Context) {
	id := c.Param("id")
	extraction, err := h.service.GetExtraction(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, errors.ErrExtractionNotFound)
			return
		}
		response.Fail(c, errors.ErrDatabase.WithCause(err))
		return
	}
	response.OK(c, extraction)
}

// ListEvents 分页查询事件。
func (h *ExtractorHandler) ListEvents(c *gin.Context) {
	offset, limit := pagination(c)

	filter := &store.EventFilter{
		Platform:    c.Query("platform"),
		StorageTier: c.Query("tier"),
	}
	if minScore := c.Query("min_score"); minScore != "" {
		v, err := strconv.Atoi(minScore)
		if err != nil {
			response.Fail(c, errors.ErrInvalidParam.WithMessage("min_score must be an integer"))
			return
		}
		filter.MinScore = v
	}

	list, err := h.service.ListEvents(c.Request.Context(), filter, offset, limit)
	if err != nil {
		response.Fail(c, errors.ErrDatabase.WithCause(err))
		return
	}
	response.OK(c, list)
}

// GetEvent 查询事件详情。
func (h *ExtractorHandler) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, errors.ErrInvalidParam.WithMessage("id must be an integer"))
		return
	}

	event, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, errors.ErrEventNotFound)
			return
		}
		response.Fail(c, errors.ErrDatabase.WithCause(err))
		return
	}
	response.OK(c, event)
}

// Stats 返回 JSON 指标快照。
func (h *ExtractorHandler) Stats(c *gin.Context) {
	response.OK(c, h.service.Stats())
}

// Metrics 返回 Prometheus 文本格式指标。
func (h *ExtractorHandler) Metrics(c *gin.Context) {
	c.String(200, metrics.GetMetrics().Export("forge", "extractor"))
}

// Healthz 组件健康检查。
func (h *ExtractorHandler) Healthz(c *gin.Context) {
	components := make(map[string]string, len(h.health))
	healthy := true

	for name, check := range h.health {
		if err := check(); err != nil {
			components[name] = err.Error()
			healthy = false
		} else {
			components[name] = "ok"
		}
	}

	if !healthy {
		response.Fail(c, errors.ErrInternal.WithMessage("component unhealthy"))
		return
	}
	response.OK(c, gin.H{"status": "ok", "components": components})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
