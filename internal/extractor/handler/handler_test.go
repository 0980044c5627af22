package handler

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forge-io/agentforge/internal/extractor/biz"
	"github.com/forge-io/agentforge/internal/extractor/store"
	"github.com/forge-io/agentforge/internal/model"
	"github.com/forge-io/agentforge/pkg/utils/json"
)

type mockService struct {
	extractResult *biz.ExtractResult
	extractErr    error
	batchResult   *biz.BatchResult
	resolutions   []*biz.Resolution
	extraction    *model.Extraction
	extractionErr error
	event         *model.Event
	eventErr      error
	events        *model.EventList
	listErr       error

	lastFilter *store.EventFilter
	lastOffset int
	lastLimit  int
}

func (m *mockService) Extract(ctx context.Context, url string) (*biz.ExtractResult, error) {
	return m.extractResult, m.extractErr
}

func (m *mockService) ExtractBatch(ctx context.Context, urls []string) *biz.BatchResult {
	return m.batchResult
}

func (m *mockService) ResolveBatch(ctx context.Context, urls []string) []*biz.Resolution {
	return m.resolutions
}

func (m *mockService) GetExtraction(ctx context.Context, id string) (*model.Extraction, error) {
	return m.extraction, m.extractionErr
}

func (m *mockService) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	return m.event, m.eventErr
}

func (m *mockService) ListEvents(ctx context.Context, filter *store.EventFilter, offset, limit int) (*model.EventList, error) {
	m.lastFilter = filter
	m.lastOffset = offset
	m.lastLimit = limit
	return m.events, m.listErr
}

func (m *mockService) Stats() map[string]any {
	return map[string]any{"extractions": map[string]any{"total": int64(3)}}
}

func newTestRouter(svc Service, health map[string]func() error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewExtractorHandler(svc, health)

	engine.GET("/healthz", h.Healthz)
	engine.GET("/metrics", h.Metrics)
	v1 := engine.Group("/v1")
	v1.POST("/extract", h.Extract)
	v1.POST("/extract/batch", h.ExtractBatch)
	v1.POST("/resolve", h.Resolve)
	v1.GET("/extractions/:id", h.GetExtraction)
	v1.GET("/events", h.ListEvents)
	v1.GET("/events/:id", h.GetEvent)
	v1.GET("/stats", h.Stats)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestExtractSuccess(t *testing.T) {
	svc := &mockService{
		extractResult: &biz.ExtractResult{
			JobID: "01J8ZXYA9GQXH3V5W2K4N6P7R8",
			Extraction: &model.Extraction{
				ID:     "01J8ZXYA9GQXH3V5W2K4N6P7R8",
				Status: model.ExtractionStatusSuccess,
				Score:  92,
			},
		},
	}
	engine := newTestRouter(svc, nil)

	w := doJSON(t, engine, http.MethodPost, "/v1/extract", `{"url":"https://lu.ma/forge-summit"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, float64(0), envelope["code"])
}

func TestExtractMissingURL(t *testing.T) {
	engine := newTestRouter(&mockService{}, nil)

	w := doJSON(t, engine, http.MethodPost, "/v1/extract", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractStrictRejection(t *testing.T) {
	svc := &mockService{
		extractResult: &biz.ExtractResult{
			JobID: "01J8ZXYA9GQXH3V5W2K4N6P7R8",
			Extraction: &model.Extraction{
				ID:     "01J8ZXYA9GQXH3V5W2K4N6P7R8",
				Status: model.ExtractionStatusRejected,
				Score:  12,
			},
		},
	}
	engine := newTestRouter(svc, nil)

	// 非严格模式下拒绝仍按成功返回。
	w := doJSON(t, engine, http.MethodPost, "/v1/extract", `{"url":"https://example.com/thin"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/v1/extract", `{"url":"https://example.com/thin","strict":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExtractBatchTooLarge(t *testing.T) {
	engine := newTestRouter(&mockService{}, nil)

	urls := make([]string, 101)
	for i := range urls {
		urls[i] = "https://example.com/e"
	}
	body, err := json.Marshal(map[string]any{"urls": urls})
	require.NoError(t, err)

	w := doJSON(t, engine, http.MethodPost, "/v1/extract/batch", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractBatchSuccess(t *testing.T) {
	svc := &mockService{
		batchResult: &biz.BatchResult{
			Total:     2,
			Completed: 2,
			Items: []*biz.BatchItem{
				{URL: "https://lu.ma/a", Status: biz.BatchStatusDone},
				{URL: "https://lu.ma/b", Status: biz.BatchStatusDone},
			},
		},
	}
	engine := newTestRouter(svc, nil)

	w := doJSON(t, engine, http.MethodPost, "/v1/extract/batch", `{"urls":["https://lu.ma/a","https://lu.ma/b"]}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResolve(t *testing.T) {
	svc := &mockService{
		resolutions: []*biz.Resolution{
			{URL: "https://sho.rt/x", FinalURL: "https://lu.ma/forge-summit"},
		},
	}
	engine := newTestRouter(svc, nil)

	w := doJSON(t, engine, http.MethodPost, "/v1/resolve", `{"urls":["https://sho.rt/x"]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lu.ma/forge-summit")
}

func TestGetExtractionNotFound(t *testing.T) {
	svc := &mockService{extractionErr: gorm.ErrRecordNotFound}
	engine := newTestRouter(svc, nil)

	w := doJSON(t, engine, http.MethodGet, "/v1/extractions/01J8ZXYA9GQXH3V5W2K4N6P7R8", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEventNotFound(t *testing.T) {
	svc := &mockService{eventErr: gorm.ErrRecordNotFound}
	engine := newTestRouter(svc, nil)

	w := doJSON(t, engine, http.MethodGet, "/v1/events/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEventBadID(t *testing.T) {
	engine := newTestRouter(&mockService{}, nil)

	w := doJSON(t, engine, http.MethodGet, "/v1/events/not-a-number", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEventsFilters(t *testing.T) {
	svc := &mockService{
		events: &model.EventList{TotalCount: 1, Items: []*model.Event{{Name: "Forge Summit"}}},
	}
	engine := newTestRouter(svc, nil)

	w := doJSON(t, engine, http.MethodGet, "/v1/events?platform=luma&tier=premium&min_score=80&offset=10&limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, svc.lastFilter)
	assert.Equal(t, "luma", svc.lastFilter.Platform)
	assert.Equal(t, "premium", svc.lastFilter.StorageTier)
	assert.Equal(t, 80, svc.lastFilter.MinScore)
	assert.Equal(t, 10, svc.lastOffset)
	assert.Equal(t, 5, svc.lastLimit)
}

func TestListEventsPaginationDefaults(t *testing.T) {
	svc := &mockService{events: &model.EventList{}}
	engine := newTestRouter(svc, nil)

	w := doJSON(t, engine, http.MethodGet, "/v1/events?offset=-3&limit=5000", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, svc.lastOffset)
	assert.Equal(t, 20, svc.lastLimit)
}

func TestStats(t *testing.T) {
	engine := newTestRouter(&mockService{}, nil)

	w := doJSON(t, engine, http.MethodGet, "/v1/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "extractions")
}

func TestHealthz(t *testing.T) {
	health := map[string]func() error{
		"postgres": func() error { return nil },
	}
	engine := newTestRouter(&mockService{}, health)

	w := doJSON(t, engine, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
}

func TestHealthzUnhealthy(t *testing.T) {
	health := map[string]func() error{
		"postgres": func() error { return nil },
		"redis":    func() error { return stderrors.New("connection refused") },
	}
	engine := newTestRouter(&mockService{}, health)

	w := doJSON(t, engine, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsText(t *testing.T) {
	engine := newTestRouter(&mockService{}, nil)

	w := doJSON(t, engine, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "forge_extractor_extractions_total")
}
