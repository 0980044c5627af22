package biz

import (
	"strings"
	"time"

	"github.com/forge-io/agentforge/pkg/scrape"
)

// draftFromPage 从解析后的页面构建事件草稿。
// 取值优先级：JSON-LD 结构化数据 > OpenGraph/meta 标签 > 平台选择器。
func draftFromPage(page *scrape.Page, profile *scrape.Profile) *Draft {
	draft := &Draft{}

	// 平台选择器提示
	draft.Name = page.Find(profile.Selectors["name"])
	draft.Location = page.Find(profile.Selectors["location"])
	if datetime := page.FindAttr(profile.Selectors["datetime"], "datetime"); datetime != "" {
		draft.StartTime = parseEventTime(datetime)
	}

	// meta 标签
	if draft.Name == "" {
		draft.Name = page.MetaAny("og:title", "twitter:title")
	}
	if draft.Name == "" {
		draft.Name = page.Title
	}
	draft.Description = page.MetaAny("og:description", "twitter:description", "description")
	draft.ImageURL = page.MetaAny("og:image", "twitter:image")

	// JSON-LD Event 块覆盖以上来源
	for _, block := range page.JSONLD {
		if !isEventType(block["@type"]) {
			continue
		}
		applyJSONLD(draft, block)
		break
	}

	// 描述过短时回退到正文
	if len(draft.Description) < minDescriptionLength && len(page.Text) >= minDescriptionLength {
		draft.Description = truncate(page.Text, 2000)
	}

	return draft
}

func applyJSONLD(draft *Draft, block map[string]any) {
	if name, ok := block["name"].(string); ok && name != "" {
		draft.Name = name
	}
	if desc, ok := block["description"].(string); ok && len(desc) > len(draft.Description) {
		draft.Description = desc
	}
	if start, ok := block["startDate"].(string); ok {
		if t := parseEventTime(start); t != nil {
			draft.StartTime = t
		}
	}
	if end, ok := block["endDate"].(string); ok {
		if t := parseEventTime(end); t != nil {
			draft.EndTime = t
		}
	}
	if image, ok := block["image"].(string); ok && image != "" {
		draft.ImageURL = image
	}
	if url, ok := block["url"].(string); ok && url != "" {
		draft.RegistrationURL = url
	}

	if loc := nestedName(block["location"]); loc != "" {
		draft.Location = loc
	}
	if org := nestedName(block["organizer"]); org != "" {
		draft.Organizer = org
	}
	draft.Speakers = appendSpeakers(draft.Speakers, block["performer"])
}

// isEventType 判断 JSON-LD @type 是否为事件类型（可能是字符串或数组）。
func isEventType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(t, "Event")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.Contains(s, "Event") {
				return true
			}
		}
	}
	return false
}

// nestedName 从 JSON-LD 嵌套对象中取 name 字段，兼容直接给字符串的情况。
func nestedName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			return name
		}
		// Place 对象可能把名称放在 address 里
		if addr, ok := t["address"].(map[string]any); ok {
			if name, ok := addr["streetAddress"].(string); ok {
				return name
			}
		}
	case []any:
		if len(t) > 0 {
			return nestedName(t[0])
		}
	}
	return ""
}

func appendSpeakers(speakers []string, v any) []string {
	switch t := v.(type) {
	case map[string]any:
		if name, ok := t["name"].(string); ok && name != "" {
			return append(speakers, name)
		}
	case []any:
		for _, item := range t {
			speakers = appendSpeakers(speakers, item)
		}
	}
	return speakers
}

// eventTimeFormats 事件时间的兼容解析格式。
var eventTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006 15:04",
	"January 2, 2006",
}

func parseEventTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, format := range eventTimeFormats {
		if t, err := time.Parse(format, value); err == nil {
			return &t
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
