package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forge-io/agentforge/pkg/llm"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Provider) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewProviderWithConfig(&Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "gemini-1.5-flash",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	})
	return server, provider
}

func TestProviderChat(t *testing.T) {
	var gotReq chatRequest
	_, provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello from gemini"}]}}]}`))
	})

	got, err := provider.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got != "hello from gemini" {
		t.Errorf("expected 'hello from gemini', got '%s'", got)
	}

	// system 消息映射到 systemInstruction，不进入 contents
	if gotReq.SystemInstruction == nil {
		t.Fatal("expected systemInstruction to be set")
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Role != "user" {
		t.Errorf("unexpected contents: %+v", gotReq.Contents)
	}
}

func TestProviderRetriesOnServerError(t *testing.T) {
	calls := 0
	_, provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})

	got, err := provider.Generate(context.Background(), "prompt", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected 'ok', got '%s'", got)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestProviderNoCandidates(t *testing.T) {
	_, provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := provider.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err == nil {
		t.Error("expected error for empty candidates")
	}
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	_, err := NewProvider(map[string]any{"model": "gemini-1.5-pro"})
	if err == nil {
		t.Error("expected error when api_key is missing")
	}
}

func TestNewProviderFromConfigMap(t *testing.T) {
	p, err := NewProvider(map[string]any{
		"api_key":     "k",
		"model":       "gemini-1.5-pro",
		"timeout":     10 * time.Second,
		"max_retries": 5,
	})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("expected provider name '%s', got '%s'", ProviderName, p.Name())
	}
}
