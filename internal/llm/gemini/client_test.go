package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/joseph-ayodele/assignment-feedback/internal/llm"
)

func TestAssessText(t *testing.T) {
	var path, key string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"grade\":"},{"text":"\"B\"}"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "g-key", BaseURL: srv.URL, Model: "gemini-test"}, nil)
	out, err := c.AssessText(context.Background(), "system prompt", "essay text")
	require.NoError(t, err)

	assert.Equal(t, `{"grade":"B"}`, out)
	assert.Equal(t, "/models/gemini-test:generateContent", path)
	assert.Equal(t, "g-key", key)
	assert.Equal(t, "system prompt", gjson.GetBytes(body, "systemInstruction.parts.0.text").String())
	assert.Equal(t, "essay text", gjson.GetBytes(body, "contents.0.parts.0.text").String())
	assert.Equal(t, "application/json", gjson.GetBytes(body, "generationConfig.responseMimeType").String())
}

func TestAssessDocument_InlineData(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.AssessDocument(context.Background(), "grade it", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", gjson.GetBytes(body, "contents.0.parts.0.inline_data.mime_type").String())
	assert.Equal(t, "JVBERi0xLjQ=", gjson.GetBytes(body, "contents.0.parts.0.inline_data.data").String())
	assert.Equal(t, "grade it", gjson.GetBytes(body, "contents.0.parts.1.text").String())
}

func TestClient_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		reply  string
		kind   llm.ErrorKind
	}{
		{"overloaded", http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`, llm.Transient},
		{"rate limited", http.StatusTooManyRequests, `{}`, llm.Transient},
		{"forbidden", http.StatusForbidden, `{}`, llm.Permanent},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, llm.Permanent},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, llm.Permanent},
		{"no text", http.StatusOK, `{"candidates":[{"finishReason":"MAX_TOKENS"}]}`, llm.Permanent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.reply))
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
			_, err := c.AssessText(context.Background(), "p", "t")
			var pe *llm.ProviderError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tc.kind, pe.Kind)
			assert.Equal(t, "gemini", pe.Provider)
		})
	}
}

func TestClient_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.AssessText(ctx, "p", "t")
	var pe *llm.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, llm.Permanent, pe.Kind)
}
