package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model               string `json:"model"`
	MaxTokens           int    `json:"max_tokens"`
	MaxCompletionTokens int    `json:"max_completion_tokens"`
	Messages            []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func newFakeOpenAI(t *testing.T, reply string, got *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		resp := map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-test",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": reply},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
}

func TestOpenAIAnalyze(t *testing.T) {
	var got capturedRequest
	server := newFakeOpenAI(t, "false", &got)
	defer server.Close()

	analyzer := NewOpenAIAnalyzer("sk-test", "gpt-4o", server.URL+"/v1")

	text, err := analyzer.Analyze(context.Background(), "label?", bytes.NewReader([]byte{0x89, 0x50}), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "false", text)

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, maxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "label?", got.Messages[0].Content[0].Text)
	require.NotNil(t, got.Messages[0].Content[1].ImageURL)
	assert.Equal(t, "data:image/png;base64,iVA=", got.Messages[0].Content[1].ImageURL.URL)
}

func TestOpenAIAnalyzeReasoningModelUsesCompletionTokens(t *testing.T) {
	var got capturedRequest
	server := newFakeOpenAI(t, "{}", &got)
	defer server.Close()

	analyzer := NewOpenAIAnalyzer("sk-test", "o4-mini", server.URL+"/v1")

	_, err := analyzer.Analyze(context.Background(), "p", bytes.NewReader([]byte{1}), "image/png")
	require.NoError(t, err)
	assert.Zero(t, got.MaxTokens)
	assert.Equal(t, maxTokens, got.MaxCompletionTokens)
}

func TestOpenAIAnalyzeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	analyzer := NewOpenAIAnalyzer("sk-test", "gpt-4o", server.URL+"/v1")

	_, err := analyzer.Analyze(context.Background(), "p", bytes.NewReader([]byte{1}), "image/png")
	assert.Error(t, err)
}

func TestOpenAIAnalyzeReadError(t *testing.T) {
	analyzer := NewOpenAIAnalyzer("sk-test", "gpt-4o", "")

	_, err := analyzer.Analyze(context.Background(), "p", &errReader{}, "image/png")
	assert.Error(t, err)
}

type errReader struct{}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
