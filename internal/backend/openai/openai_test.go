package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlpd/internal/engine"
	"nlpd/internal/lang"
)

// fakeAPI answers chat completions with reply and embeddings with one
// vector per input.
func fakeAPI(t *testing.T, reply string, seen *[]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(body, &req)
		if seen != nil {
			*seen = append(*seen, req)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "chatcmpl-1", "object": "chat.completion", "created": 0, "model": req["model"],
				"choices": []any{map[string]any{
					"index": 0, "finish_reason": "stop",
					"message": map[string]any{"role": "assistant", "content": reply},
				}},
			})
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			inputs, _ := req["input"].([]any)
			data := make([]any, len(inputs))
			for i := range inputs {
				// reversed order to check that results are re-sorted by index
				idx := len(inputs) - 1 - i
				data[i] = map[string]any{"object": "embedding", "index": idx, "embedding": []float64{float64(idx), 0.5}}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list", "model": req["model"], "data": data,
				"usage": map[string]any{"prompt_tokens": 1, "total_tokens": 1},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranslateThroughChat(t *testing.T) {
	var seen []map[string]any
	srv := fakeAPI(t, " hello \n", &seen)
	l := New(Config{APIKey: "test", BaseURL: srv.URL + "/"})

	m, err := l.Load(context.Background(), engine.Spec{
		Capability: engine.Translation,
		Pair:       lang.Pair{Source: lang.Dutch, Target: lang.English},
		Options:    map[string]string{"temperature": "0"},
	})
	require.NoError(t, err)
	tr, ok := m.(engine.Translator)
	require.True(t, ok)
	out, err := tr.Translate(context.Background(), []string{"hallo"}, lang.Dutch, lang.English)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, out)

	require.Len(t, seen, 1)
	assert.Equal(t, DefaultChatModel, seen[0]["model"])
	assert.EqualValues(t, 0, seen[0]["temperature"])
	assert.Len(t, seen[0]["messages"], 2)
}

func TestEncodeConvertsAndOrders(t *testing.T) {
	srv := fakeAPI(t, "", nil)
	l := New(Config{APIKey: "test", BaseURL: srv.URL + "/"})
	m, err := l.Load(context.Background(), engine.Spec{Capability: engine.Embeddings, Variant: "AllMiniLmL12V2", Model: "mini"})
	require.NoError(t, err)
	enc := m.(engine.Encoder)
	out, err := enc.Encode(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 0.5}, {1, 0.5}}, out)
	require.NoError(t, m.Close())
}

func TestLoadWithoutCredentials(t *testing.T) {
	l := New(Config{})
	_, err := l.Load(context.Background(), engine.Spec{Capability: engine.Summarization})
	assert.True(t, engine.IsDependencyUnavailable(err))
	assert.True(t, l.Supports(engine.TokenClassification))
}

func TestBadOption(t *testing.T) {
	l := New(Config{APIKey: "k"})
	_, err := l.Load(context.Background(), engine.Spec{Capability: engine.Summarization, Variant: "v", Options: map[string]string{"max_tokens": "lots"}})
	assert.Error(t, err)
}

func TestUpstreamErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()
	l := New(Config{APIKey: "k", BaseURL: srv.URL + "/"})
	m, err := l.Load(context.Background(), engine.Spec{Capability: engine.Summarization})
	require.NoError(t, err)
	_, err = m.(engine.Summarizer).Summarize(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "openai chat")
}
