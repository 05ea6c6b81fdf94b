package ollama

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

func TestOllamaAnalyze(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)

		resp := map[string]interface{}{
			"model":    got.Model,
			"response": "true",
			"done":     true,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	analyzer := NewOllamaAnalyzer(server.URL, "llava")

	imageData := []byte{0xFF, 0xD8, 0xFF, 0xE0} // JPEG header
	text, err := analyzer.Analyze(context.Background(), "is there a label?", bytes.NewReader(imageData), "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "true", text)
	assert.Equal(t, "llava", got.Model)
	assert.Equal(t, "is there a label?", got.Prompt)
	assert.Equal(t, []string{"/9j/4A=="}, got.Images)
	assert.False(t, got.Stream)
}

func TestOllamaAnalyzeNetworkError(t *testing.T) {
	analyzer := NewOllamaAnalyzer("http://localhost:99999", "llava")

	imageData := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	_, err := analyzer.Analyze(context.Background(), "p", bytes.NewReader(imageData), "image/jpeg")

	assert.Error(t, err)
}

func TestOllamaAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	analyzer := NewOllamaAnalyzer(server.URL, "llava")

	_, err := analyzer.Analyze(context.Background(), "p", bytes.NewReader([]byte{0xFF}), "image/jpeg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaAnalyzeInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	analyzer := NewOllamaAnalyzer(server.URL, "llava")

	_, err := analyzer.Analyze(context.Background(), "p", bytes.NewReader([]byte{0xFF}), "image/jpeg")
	assert.Error(t, err)
}

func TestOllamaAnalyzeReadError(t *testing.T) {
	analyzer := NewOllamaAnalyzer("http://localhost:11434", "llava")

	_, err := analyzer.Analyze(context.Background(), "p", &errReader{}, "image/jpeg")
	assert.Error(t, err)
}

type errReader struct{}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
