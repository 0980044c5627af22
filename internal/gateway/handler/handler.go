// Package handler provides HTTP handlers for the gateway service.
package handler

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forge-io/agentforge/internal/gateway/biz"
	"github.com/forge-io/agentforge/internal/gateway/metrics"
	"github.com/forge-io/agentforge/internal/gateway/store"
	"github.com/forge-io/agentforge/internal/model"
	"github.com/forge-io/agentforge/pkg/errors"
	"github.com/forge-io/agentforge/pkg/response"
)

// Service 网关业务能力。
type Service interface {
	Ask(ctx context.Context, question string) (*biz.Answer, error)
	ListEvents(ctx context.Context, filter *store.EventFilter, offset, limit int) (*model.EventList, error)
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
	Stats() map[string]any
}

// GatewayHandler handles gateway HTTP requests.
type GatewayHandler struct {
	service Service
	health  map[string]func() error
}

// NewGatewayHandler creates a new GatewayHandler.
// health holds named component health checks for the healthz endpoint.
func NewGatewayHandler(service Service, health map[string]func() error) *GatewayHandler {
	return &GatewayHandler{
		service: service,
		health:  health,
	}
}

// AskRequest 问答请求。
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask 基于已存储的事件回答问题。
func (h *GatewayHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.ErrInvalidParam.WithCause(err))
		return
	}

	answer, err := h.service.Ask(c.Request.Context(), req.Question)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, answer)
}

// ListEvents 分页查询事件。
func (h *GatewayHandler) ListEvents(c *gin.Context) {
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
		response.Fail(c, err)
		return
	}
	response.OK(c, list)
}

// GetEvent 查询事件详情。
func (h *GatewayHandler) GetEvent(c *gin.Context) {
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
func (h *GatewayHandler) Stats(c *gin.Context) {
	response.OK(c, h.service.Stats())
}

// Metrics 返回 Prometheus 文本格式指标。
func (h *GatewayHandler) Metrics(c *gin.Context) {
	c.String(200, metrics.GetMetrics().Export("forge", "gateway"))
}

// Healthz 组件健康检查。
func (h *GatewayHandler) Healthz(c *gin.Context) {
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
