package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Timeout:          5 * time.Second,
		RetryCount:       0,
		RetryWaitTime:    10 * time.Millisecond,
		RetryMaxWaitTime: 50 * time.Millisecond,
		MaxRedirects:     10,
		UserAgent:        "test-agent",
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid http", "http://example.com/event", false},
		{"valid https", "https://lu.ma/abc", false},
		{"ftp scheme", "ftp://example.com/file", true},
		{"javascript scheme", "javascript:alert(1)", true},
		{"missing host", "https://", true},
		{"garbage", "://not-a-url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>hello</title></html>"))
	}))
	defer server.Close()

	client := NewClient(testConfig())
	result, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "hello")
	assert.Equal(t, server.URL, result.URL)
}

func TestClientFetchFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>destination</html>"))
	})

	client := NewClient(testConfig())
	result, err := client.Fetch(context.Background(), server.URL+"/short")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/final", result.FinalURL)
	assert.Contains(t, result.HTML, "destination")
}

func TestClientFetchNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig())
	result, err := client.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestClientResolve(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/r", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/target", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	client := NewClient(testConfig())
	final, err := client.Resolve(context.Background(), server.URL+"/r")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/target", final)
}

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Web3 Summit 2026</title>
  <meta property="og:title" content="Web3 Summit 2026">
  <meta property="og:image" content="/banner.png">
  <meta name="description" content="The annual Web3 gathering.">
  <script type="application/ld+json">
  {"@type":"Event","name":"Web3 Summit 2026","startDate":"2026-09-12T09:00:00Z"}
  </script>
</head>
<body>
  <main>
    <h1>Web3 Summit 2026</h1>
    <p>Join builders from across the ecosystem for two days of talks and workshops.
    The summit covers protocol engineering, infrastructure, and applied cryptography
    with speakers from leading teams in the space.</p>
    <a href="/register">Register</a>
    <a href="https://example.com/speakers">Speakers</a>
    <img src="/banner.png" alt="banner">
  </main>
</body>
</html>`

func TestParsePage(t *testing.T) {
	page, err := ParsePage(samplePage, "https://example.com/event")
	require.NoError(t, err)

	assert.Equal(t, "Web3 Summit 2026", page.Title)
	assert.Equal(t, "Web3 Summit 2026", page.Meta["og:title"])
	assert.Equal(t, "The annual Web3 gathering.", page.Meta["description"])

	require.Len(t, page.JSONLD, 1)
	assert.Equal(t, "Event", page.JSONLD[0]["@type"])
	assert.Equal(t, "2026-09-12T09:00:00Z", page.JSONLD[0]["startDate"])

	assert.Contains(t, page.Links, "https://example.com/register")
	assert.Contains(t, page.Links, "https://example.com/speakers")
	assert.Contains(t, page.Images, "https://example.com/banner.png")

	assert.Contains(t, page.Text, "protocol engineering")
}

func TestParsePageJSONLDArray(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	[{"@type":"Event","name":"A"},{"@type":"Organization","name":"B"}]
	</script></head><body></body></html>`

	page, err := ParsePage(html, "")
	require.NoError(t, err)
	require.Len(t, page.JSONLD, 2)
	assert.Equal(t, "A", page.JSONLD[0]["name"])
}

func TestPageFindAndMetaAny(t *testing.T) {
	page, err := ParsePage(samplePage, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "Web3 Summit 2026", page.Find("h1"))
	assert.Equal(t, "", page.Find(".does-not-exist"))
	assert.Equal(t, "/banner.png", page.FindAttr("img", "src"))
	assert.Equal(t, "Web3 Summit 2026", page.MetaAny("twitter:title", "og:title"))
	assert.Equal(t, "", page.MetaAny("missing-key"))
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://lu.ma/web3-summit", PlatformLuma},
		{"https://www.lu.ma/abc", PlatformLuma},
		{"https://www.eventbrite.com/e/some-event-123", PlatformEventbrite},
		{"https://eventbrite.co.uk/e/another", PlatformEventbrite},
		{"https://www.meetup.com/go-meetup/events/1", PlatformMeetup},
		{"https://example.com/events/1", PlatformGeneric},
		{"not a url at all \x7f", PlatformGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.url))
		})
	}
}

func TestProfileFor(t *testing.T) {
	luma := ProfileFor(PlatformLuma)
	assert.True(t, luma.RequiresRender)
	assert.NotEmpty(t, luma.Selectors["name"])

	unknown := ProfileFor(Platform("nope"))
	assert.Equal(t, PlatformGeneric, unknown.Platform)
}

func TestBrowserClientRender(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"html":"<html>rendered</html>","status":200}`))
	}))
	defer server.Close()

	client := NewBrowserClient(&BrowserConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})

	html, err := client.Render(context.Background(), "https://lu.ma/abc")
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", html)
}

func TestBrowserClientRenderEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200}`))
	}))
	defer server.Close()

	client := NewBrowserClient(&BrowserConfig{BaseURL: server.URL, Timeout: 5 * time.Second})
	_, err := client.Render(context.Background(), "https://lu.ma/abc")
	assert.Error(t, err)
}
