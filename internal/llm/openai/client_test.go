package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/assignment-feedback/internal/llm"
)

type captured struct {
	auth string
	body map[string]any
}

func newServer(t *testing.T, status int, reply string, got *captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		got.auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &got.body))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
}

func TestAssessText(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":" {\"grade\":\"A\"} "}}]}`, &got)
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test"}, nil)
	out, err := c.AssessText(context.Background(), "grade this", "the essay")
	require.NoError(t, err)
	assert.Equal(t, `{"grade":"A"}`, out)
	assert.Equal(t, "Bearer sk-test", got.auth)
	assert.Equal(t, "gpt-test", got.body["model"])

	msgs := got.body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "grade this", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "the essay", msgs[1].(map[string]any)["content"])
}

func TestAssessDocument_FilePart(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":"{}"}}]}`, &got)
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.AssessDocument(context.Background(), "grade the attachment", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	parts := got.body["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	file := parts[1].(map[string]any)
	assert.Equal(t, "file", file["type"])
	inner := file["file"].(map[string]any)
	assert.Equal(t, "assignment.pdf", inner["filename"])
	assert.Equal(t, "data:application/pdf;base64,JVBERi0xLjQ=", inner["file_data"])
}

func TestAssessDocument_ImagePart(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":"{}"}}]}`, &got)
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.AssessDocument(context.Background(), "p", []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)

	parts := got.body["messages"].([]any)[0].(map[string]any)["content"].([]any)
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])
}

func TestClient_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		reply  string
		kind   llm.ErrorKind
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, llm.Transient},
		{"bad request", http.StatusBadRequest, `{"error":"bad"}`, llm.Permanent},
		{"no choices", http.StatusOK, `{"choices":[]}`, llm.Permanent},
		{"garbage", http.StatusOK, `not json`, llm.Permanent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			srv := newServer(t, tc.status, tc.reply, &got)
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
			_, err := c.AssessText(context.Background(), "p", "t")
			var pe *llm.ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.kind, pe.Kind)
			assert.Equal(t, "openai", pe.Provider)
		})
	}
}
