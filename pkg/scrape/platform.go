package scrape

import (
	"net/url"
	"strings"
)

// Platform 事件平台类型。
type Platform string

const (
	PlatformLuma       Platform = "luma"
	PlatformEventbrite Platform = "eventbrite"
	PlatformMeetup     Platform = "meetup"
	PlatformGeneric    Platform = "generic"
)

// Profile 平台抓取画像：选择器提示和渲染需求。
type Profile struct {
	// Platform 平台类型。
	Platform Platform

	// RequiresRender 页面是否依赖 JS 渲染（静态抓取内容不全）。
	RequiresRender bool

	// Selectors 字段级 CSS 选择器提示（字段名 -> 选择器）。
	Selectors map[string]string
}

// profiles 各平台的抓取画像。
var profiles = map[Platform]*Profile{
	PlatformLuma: {
		Platform:       PlatformLuma,
		RequiresRender: true,
		Selectors: map[string]string{
			"name":     "h1",
			"datetime": ".event-time, [class*='timestamp']",
			"location": ".event-location, [class*='location']",
		},
	},
	PlatformEventbrite: {
		Platform:       PlatformEventbrite,
		RequiresRender: false,
		Selectors: map[string]string{
			"name":     "h1.event-title, h1",
			"datetime": ".date-info, time",
			"location": ".location-info, [data-spec='event-details-location']",
		},
	},
	PlatformMeetup: {
		Platform:       PlatformMeetup,
		RequiresRender: false,
		Selectors: map[string]string{
			"name":     "h1",
			"datetime": "time",
			"location": "[data-testid='venue-name'], .venueDisplay",
		},
	},
	PlatformGeneric: {
		Platform:       PlatformGeneric,
		RequiresRender: false,
		Selectors: map[string]string{
			"name":     "h1",
			"datetime": "time",
			"location": "",
		},
	},
}

// DetectPlatform 根据 URL 主机名识别事件平台。
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformGeneric
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	switch {
	case host == "lu.ma" || host == "luma.com" || strings.HasSuffix(host, ".lu.ma"):
		return PlatformLuma
	case host == "eventbrite.com" || strings.HasSuffix(host, ".eventbrite.com") ||
		strings.HasPrefix(host, "eventbrite."):
		return PlatformEventbrite
	case host == "meetup.com" || strings.HasSuffix(host, ".meetup.com"):
		return PlatformMeetup
	default:
		return PlatformGeneric
	}
}

// ProfileFor 返回平台的抓取画像。
func ProfileFor(platform Platform) *Profile {
	if p, ok := profiles[platform]; ok {
		return p
	}
	return profiles[PlatformGeneric]
}
