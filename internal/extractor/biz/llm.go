package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forge-io/agentforge/pkg/resilience"
	"github.com/forge-io/agentforge/pkg/utils/json"
)

// extractSystemPrompt LLM 抽取的固定指令。
const extractSystemPrompt = `You are an event information extractor. ` +
	`Given the text content of a web page, extract the event details and respond ` +
	`with a single JSON object using exactly these keys: ` +
	`name, description, start_time, end_time, location, organizer, speakers, registration_url, image_url. ` +
	`Times must be RFC 3339 strings or null. speakers is an array of names. ` +
	`Use null for anything not present. Respond with JSON only.`

// maxLLMInputLength 送入模型的页面文本上限。
const maxLLMInputLength = 12000

// llmDraft 模型返回的 JSON 结构。
type llmDraft struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	Location        string   `json:"location"`
	Organizer       string   `json:"organizer"`
	Speakers        []string `json:"speakers"`
	RegistrationURL string   `json:"registration_url"`
	ImageURL        string   `json:"image_url"`
}

// extractWithLLM 通过 LLM 从页面文本抽取事件字段。
// 调用经过熔断器和重试保护。
func (s *ExtractorService) extractWithLLM(ctx context.Context, pageText string) (*Draft, error) {
	if s.chat == nil {
		return nil, fmt.Errorf("llm provider not configured")
	}

	prompt := truncate(pageText, maxLLMInputLength)

	var raw string
	start := time.Now()
	err := s.breaker.Execute(func() error {
		return resilience.Retry(ctx, &resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
			OnRetry: func(attempt int, err error) {
				s.metrics.RecordLLMRetry()
			},
		}, func() error {
			var callErr error
			raw, callErr = s.chat.Generate(ctx, prompt, extractSystemPrompt)
			return callErr
		})
	})
	s.metrics.RecordLLMCall(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	draft, err := parseLLMResponse(raw)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// parseLLMResponse 解析模型返回的 JSON。
// 解析失败时做一次修复尝试：去掉 Markdown 代码围栏后重试。
func parseLLMResponse(raw string) (*Draft, error) {
	var parsed llmDraft
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		repaired := stripCodeFences(raw)
		if err2 := json.Unmarshal([]byte(repaired), &parsed); err2 != nil {
			return nil, fmt.Errorf("malformed llm response: %w", err)
		}
	}

	draft := &Draft{
		Name:            parsed.Name,
		Description:     parsed.Description,
		Location:        parsed.Location,
		Organizer:       parsed.Organizer,
		Speakers:        parsed.Speakers,
		RegistrationURL: parsed.RegistrationURL,
		ImageURL:        parsed.ImageURL,
	}
	if t := parseEventTime(parsed.StartTime); t != nil {
		draft.StartTime = t
	}
	if t := parseEventTime(parsed.EndTime); t != nil {
		draft.EndTime = t
	}

	return draft, nil
}

// stripCodeFences 去掉 ```json ... ``` 围栏并截取首个 JSON 对象。
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// 模型偶尔在 JSON 前后夹带说明文字
	startIdx := strings.Index(s, "{")
	endIdx := strings.LastIndex(s, "}")
	if startIdx >= 0 && endIdx > startIdx {
		s = s[startIdx : endIdx+1]
	}

	return s
}
