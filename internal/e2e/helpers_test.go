package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"nlpd/internal/backend"
	"nlpd/internal/backend/anthropic"
	"nlpd/internal/backend/llama"
	"nlpd/internal/backend/openai"
	"nlpd/internal/catalog"
	"nlpd/internal/engine"
	"nlpd/internal/httpapi"
	"nlpd/internal/lang"
	"nlpd/internal/manager"
)

// upstream fakes the OpenAI and Anthropic HTTP APIs and counts requests.
type upstream struct {
	srv      *httptest.Server
	requests atomic.Int64
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(body, &req)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "chatcmpl-1", "object": "chat.completion", "created": 0, "model": req["model"],
				"choices": []any{map[string]any{
					"index": 0, "finish_reason": "stop",
					"message": map[string]any{"role": "assistant", "content": "hello\n"},
				}},
			})
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list", "model": req["model"],
				"data":  []any{map[string]any{"object": "embedding", "index": 0, "embedding": []float64{0.12345678907, 1, 2}}},
				"usage": map[string]any{"prompt_tokens": 1, "total_tokens": 1},
			})
		case strings.HasSuffix(r.URL.Path, "/v1/messages"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "msg_1", "type": "message", "role": "assistant", "model": req["model"],
				"stop_reason": "end_turn",
				"content":     []any{map[string]any{"type": "text", "text": "A short summary."}},
				"usage":       map[string]any{"input_tokens": 1, "output_tokens": 1},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.srv.Close)
	return u
}

// newServer wires the full stack: HTTP API, manager, backends and catalog.
// Translation nl-en and embeddings go to the OpenAI fake, summarization to
// the Anthropic fake, and ner to a llama model file that does not exist.
func newServer(t *testing.T, u *upstream) (*httptest.Server, *manager.Manager) {
	t.Helper()
	backends := backend.NewRegistry()
	backends.Register(openai.Name, openai.New(openai.Config{APIKey: "test", BaseURL: u.srv.URL + "/"}))
	backends.Register(anthropic.Name, anthropic.New(anthropic.Config{APIKey: "test", BaseURL: u.srv.URL + "/"}))
	backends.Register(llama.Name, llama.New(llama.Config{}))

	cat, err := catalog.New([]engine.Spec{
		{Capability: engine.Translation, Pair: lang.Pair{Source: lang.Dutch, Target: lang.English}, Backend: openai.Name},
		{Capability: engine.Embeddings, Backend: openai.Name},
		{Capability: engine.Summarization, Backend: anthropic.Name},
		{Capability: engine.TokenClassification, Backend: llama.Name, Model: "/nonexistent/ner.gguf"},
	}, backends.Check)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	mgr := manager.New(manager.Config{Catalog: cat, Backends: backends, Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = mgr.Close() })

	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func httpPostJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}
