package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/forge-io/agentforge/pkg/utils/json"
)

// Page 解析后的页面结构化内容。
type Page struct {
	// Title 页面标题（<title>）。
	Title string

	// Meta 所有 meta 标签（name/property -> content）。
	Meta map[string]string

	// JSONLD 页面内嵌的 JSON-LD 结构化数据块。
	JSONLD []map[string]any

	// Text 主要内容区域的文本。
	Text string

	// Links 页面内的链接（已解析为绝对 URL，去重）。
	Links []string

	// Images 页面内的图片地址（已解析为绝对 URL，去重）。
	Images []string

	doc *goquery.Document
}

// maxContentLength 主内容文本的截断上限。
const maxContentLength = 20000

// ParsePage 解析 HTML 为结构化页面内容。baseURL 用于解析相对链接。
func ParsePage(html string, baseURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	page := &Page{
		Title:  strings.TrimSpace(doc.Find("title").First().Text()),
		Meta:   extractMeta(doc),
		JSONLD: extractJSONLD(doc),
		Text:   extractMainContent(doc, maxContentLength),
		Links:  extractAttrs(doc, "a[href]", "href", baseURL),
		Images: extractAttrs(doc, "img[src]", "src", baseURL),
		doc:    doc,
	}

	return page, nil
}

// Find 在页面上执行 CSS 选择器，返回首个匹配元素的文本。
func (p *Page) Find(selector string) string {
	if p.doc == nil || selector == "" {
		return ""
	}
	return strings.TrimSpace(p.doc.Find(selector).First().Text())
}

// FindAttr 返回首个匹配元素的指定属性值。
func (p *Page) FindAttr(selector, attr string) string {
	if p.doc == nil || selector == "" {
		return ""
	}
	val, _ := p.doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(val)
}

// MetaAny 按顺序查找多个 meta 键，返回第一个非空值。
func (p *Page) MetaAny(keys ...string) string {
	for _, key := range keys {
		if v := p.Meta[key]; v != "" {
			return v
		}
	}
	return ""
}

func extractMeta(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)

	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		if name, exists := s.Attr("name"); exists && name != "" {
			meta[name] = content
		}
		if property, exists := s.Attr("property"); exists && property != "" {
			meta[property] = content
		}
	})

	return meta
}

func extractJSONLD(doc *goquery.Document) []map[string]any {
	var blocks []map[string]any

	doc.Find("script[type='application/ld+json']").Each(func(i int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		// 块可能是单个对象，也可能是对象数组
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			blocks = append(blocks, obj)
			return
		}
		var list []map[string]any
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			blocks = append(blocks, list...)
		}
	})

	return blocks
}

func extractMainContent(doc *goquery.Document, maxLength int) string {
	// 优先尝试常见的主内容容器
	selectors := []string{
		"main", "article", "[role='main']", ".content", "#content",
		".event-details", ".description",
	}

	for _, selector := range selectors {
		content := extractText(doc, selector, maxLength)
		if len(content) > 100 {
			return content
		}
	}

	return extractText(doc, "body", maxLength)
}

func extractText(doc *goquery.Document, selector string, maxLength int) string {
	var texts []string
	totalLength := 0

	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" && totalLength < maxLength {
			remaining := maxLength - totalLength
			if len(text) > remaining {
				text = text[:remaining] + "..."
			}
			texts = append(texts, text)
			totalLength += len(text)
		}
	})

	return strings.Join(texts, "\n\n")
}

func extractAttrs(doc *goquery.Document, selector, attr, baseURL string) []string {
	var values []string
	seen := make(map[string]bool)

	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		val, exists := s.Attr(attr)
		if !exists || val == "" {
			return
		}

		if !strings.HasPrefix(val, "http") && baseURL != "" {
			if base, err := url.Parse(baseURL); err == nil {
				if resolved, err := base.Parse(val); err == nil {
					val = resolved.String()
				}
			}
		}

		if !seen[val] {
			values = append(values, val)
			seen[val] = true
		}
	})

	return values
}
