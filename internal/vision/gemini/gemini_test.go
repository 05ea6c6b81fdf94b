package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
}

func newFakeGemini(t *testing.T, status int, body string, got *capturedRequest, path *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path != nil {
			*path = r.URL.Path
		}
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGeminiAnalyze(t *testing.T) {
	var got capturedRequest
	var path string
	reply := `{"candidates":[{"content":{"role":"model","parts":[{"text":"` +
		`{\"product_info\": {\"product_name\": \"Oats\"}}"}]},"finishReason":"STOP"}]}`
	server := newFakeGemini(t, http.StatusOK, reply, &got, &path)
	defer server.Close()

	analyzer, err := NewGeminiAnalyzer(context.Background(), Config{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	text, err := analyzer.Analyze(context.Background(), "read the label", bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, `{"product_info": {"product_name": "Oats"}}`, text)

	assert.True(t, strings.HasSuffix(path, "models/gemini-test:generateContent"), path)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	require.Len(t, got.Contents[0].Parts, 2)
	assert.Equal(t, "read the label", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/jpeg", got.Contents[0].Parts[1].InlineData.MIMEType)
}

func TestGeminiAnalyzeNoCandidates(t *testing.T) {
	server := newFakeGemini(t, http.StatusOK, `{"candidates":[]}`, nil, nil)
	defer server.Close()

	analyzer, err := NewGeminiAnalyzer(context.Background(), Config{APIKey: "k", Model: "m", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), "p", bytes.NewReader([]byte{1}), "image/png")
	assert.Error(t, err)
}

func TestGeminiAnalyzeAPIError(t *testing.T) {
	body := `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`
	server := newFakeGemini(t, http.StatusBadRequest, body, nil, nil)
	defer server.Close()

	analyzer, err := NewGeminiAnalyzer(context.Background(), Config{APIKey: "k", Model: "m", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), "p", bytes.NewReader([]byte{1}), "image/png")
	assert.Error(t, err)
}

func TestGeminiAnalyzeReadError(t *testing.T) {
	analyzer, err := NewGeminiAnalyzer(context.Background(), Config{APIKey: "k", Model: "m"})
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), "p", &errReader{}, "image/png")
	assert.Error(t, err)
}

type errReader struct{}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
