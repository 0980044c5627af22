package errors

import "net/http"

// Common errors (service 00).
var (
	// OK 表示成功。
	OK = Register(&Errno{Code: 0, HTTP: http.StatusOK, MessageEN: "Success", MessageZH: "成功"})

	// ErrInvalidParam 请求参数错误。
	ErrInvalidParam = Register(&Errno{Code: MakeCode(0, 1, 1), HTTP: http.StatusBadRequest, MessageEN: "Invalid parameter", MessageZH: "参数错误"})

	// ErrNotFound 资源不存在。
	ErrNotFound = Register(&Errno{Code: MakeCode(0, 4, 1), HTTP: http.StatusNotFound, MessageEN: "Resource not found", MessageZH: "资源不存在"})

	// ErrInternal 内部错误。
	ErrInternal = Register(&Errno{Code: MakeCode(0, 7, 1), HTTP: http.StatusInternalServerError, MessageEN: "Internal server error", MessageZH: "内部服务器错误"})

	// ErrDatabase 数据库错误。
	ErrDatabase = Register(&Errno{Code: MakeCode(0, 8, 1), HTTP: http.StatusInternalServerError, MessageEN: "Database error", MessageZH: "数据库错误"})

	// ErrCache 缓存错误。
	ErrCache = Register(&Errno{Code: MakeCode(0, 9, 1), HTTP: http.StatusInternalServerError, MessageEN: "Cache error", MessageZH: "缓存错误"})

	// ErrTimeout 请求超时。
	ErrTimeout = Register(&Errno{Code: MakeCode(0, 11, 1), HTTP: http.StatusGatewayTimeout, MessageEN: "Request timeout", MessageZH: "请求超时"})
)

// Extractor service errors (service 20).
var (
	// ErrInvalidURL the submitted URL is not a usable HTTP(S) URL.
	ErrInvalidURL = Register(&Errno{Code: MakeCode(20, 1, 1), HTTP: http.StatusBadRequest, MessageEN: "Invalid URL", MessageZH: "URL 无效"})

	// ErrExtractionFailed no content tier produced a usable result.
	ErrExtractionFailed = Register(&Errno{Code: MakeCode(20, 7, 1), HTTP: http.StatusUnprocessableEntity, MessageEN: "Extraction failed", MessageZH: "提取失败"})

	// ErrExtractionRejected the result scored below the reject threshold.
	ErrExtractionRejected = Register(&Errno{Code: MakeCode(20, 7, 2), HTTP: http.StatusUnprocessableEntity, MessageEN: "Extraction rejected: completeness below threshold", MessageZH: "提取被拒绝：完整度低于阈值"})

	// ErrBatchPoolFull the batch worker pool rejected the submission.
	ErrBatchPoolFull = Register(&Errno{Code: MakeCode(20, 7, 3), HTTP: http.StatusTooManyRequests, MessageEN: "Batch worker pool is full", MessageZH: "批量工作池已满"})

	// ErrExtractionNotFound no extraction record with the given ID.
	ErrExtractionNotFound = Register(&Errno{Code: MakeCode(20, 4, 1), HTTP: http.StatusNotFound, MessageEN: "Extraction not found", MessageZH: "提取记录不存在"})

	// ErrEventNotFound no event with the given ID.
	ErrEventNotFound = Register(&Errno{Code: MakeCode(20, 4, 2), HTTP: http.StatusNotFound, MessageEN: "Event not found", MessageZH: "事件不存在"})
)

// Gateway service errors (service 21).
var (
	// ErrAskFailed the ask pipeline could not produce an answer.
	ErrAskFailed = Register(&Errno{Code: MakeCode(21, 7, 1), HTTP: http.StatusInternalServerError, MessageEN: "Failed to answer question", MessageZH: "问答失败"})
)

// Third-party errors (service 90+).
var (
	// ErrScrapeFetch the upstream page fetch failed.
	ErrScrapeFetch = Register(&Errno{Code: MakeCode(90, 10, 1), HTTP: http.StatusBadGateway, MessageEN: "Failed to fetch page", MessageZH: "页面抓取失败"})

	// ErrBrowserRender the browser rendering service failed.
	ErrBrowserRender = Register(&Errno{Code: MakeCode(90, 10, 2), HTTP: http.StatusBadGateway, MessageEN: "Browser rendering failed", MessageZH: "浏览器渲染失败"})

	// ErrLLM the LLM provider call failed.
	ErrLLM = Register(&Errno{Code: MakeCode(91, 10, 1), HTTP: http.StatusBadGateway, MessageEN: "LLM provider error", MessageZH: "LLM 供应商错误"})
)
