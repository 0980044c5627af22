package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/forge-io/agentforge/internal/model"
	"github.com/forge-io/agentforge/pkg/errors"
	"github.com/forge-io/agentforge/pkg/llm"
	"github.com/forge-io/agentforge/pkg/utils/json"
)

// askSystemPrompt 问答的固定指令。
const askSystemPrompt = `You are an assistant for a Web3 event intelligence platform. ` +
	`Answer the user's question using only the event listings provided. ` +
	`Cite events by their name. If the listings do not contain the answer, say so plainly. ` +
	`Keep the answer short and factual.`

// maxQuestionLength 问题长度上限。
const maxQuestionLength = 2000

// Answer 一次问答的结果。
type Answer struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []uint64 `json:"sources"`
	Cached   bool     `json:"cached"`
}

// Ask 基于已存储的事件回答问题。
// 回答按问题哈希缓存，缓存命中时不调用模型。
func (s *GatewayService) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.ErrInvalidParam.WithMessage("question is required")
	}
	if len(question) > maxQuestionLength {
		return nil, errors.ErrInvalidParam.WithMessagef("question exceeds %d characters", maxQuestionLength)
	}
	if s.chat == nil {
		return nil, errors.ErrAskFailed.WithMessage("chat provider not configured")
	}

	key := questionKey(question)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			logger.Warnw("Answer cache read failed", "error", err)
		} else if ok {
			var answer Answer
			if err := json.Unmarshal([]byte(cached), &answer); err == nil {
				answer.Cached = true
				s.metrics.RecordAsk(true, 0, 0, nil)
				return &answer, nil
			}
			logger.Warnw("Answer cache entry corrupt, regenerating", "key", key)
		}
	}

	start := time.Now()

	events, err := s.reader.Recent(ctx, s.config.MinScore, s.config.TopK)
	if err != nil {
		s.metrics.RecordAsk(false, 0, 0, err)
		return nil, errors.ErrDatabase.WithCause(err)
	}
	if len(events) == 0 {
		s.metrics.RecordAsk(false, 0, 0, nil)
		return &Answer{
			Question: question,
			Answer:   "No stored events are available to answer from yet.",
			Sources:  []uint64{},
		}, nil
	}

	contextText, sources := s.buildContext(events)
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: askSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Event listings:\n%s\nQuestion: %s", contextText, question)},
	}

	reply, err := s.chat.Chat(ctx, messages)
	if err != nil {
		s.metrics.RecordAsk(false, len(events), time.Since(start), err)
		return nil, errors.ErrAskFailed.WithCause(err)
	}

	answer := &Answer{
		Question: question,
		Answer:   strings.TrimSpace(reply),
		Sources:  sources,
	}

	if s.cache != nil {
		if data, err := json.Marshal(answer); err == nil {
			if err := s.cache.Set(ctx, key, string(data), s.config.AnswerCacheTTL); err != nil {
				logger.Warnw("Answer cache write failed", "error", err)
			}
		}
	}

	s.metrics.RecordAsk(false, len(events), time.Since(start), nil)
	return answer, nil
}

// buildContext 将事件压缩为模型上下文，并返回来源事件 ID。
func (s *GatewayService) buildContext(events []*model.Event) (string, []uint64) {
	var sb strings.Builder
	sources := make([]uint64, 0, len(events))

	for i, event := range events {
		sources = append(sources, event.ID)

		sb.WriteString(fmt.Sprintf("%d. %s", i+1, event.Name))
		if event.StartTime != nil {
			sb.WriteString(" | " + event.StartTime.Format("2006-01-02 15:04"))
		}
		if event.Location != "" {
			sb.WriteString(" | " + event.Location)
		}
		if event.Organizer != "" {
			sb.WriteString(" | by " + event.Organizer)
		}
		sb.WriteString("\n")

		if event.Description != "" {
			desc := event.Description
			if len(desc) > s.config.MaxDescriptionChars {
				desc = desc[:s.config.MaxDescriptionChars] + "..."
			}
			sb.WriteString("   " + desc + "\n")
		}
	}

	return sb.String(), sources
}

// questionKey 问题的缓存键，大小写和首尾空白不敏感。
func questionKey(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
