package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geminiReply = `{"candidates":[{"content":{"parts":[{"text":` +
	`"{\"title\":\"Rivers\",\"grade\":\"B+\",\"score\":87,\"summary\":\"Well argued.\",` +
	`\"strengths\":[\"Clear thesis\"],\"areas_for_improvement\":[\"Cite more\"],` +
	`\"detailed_feedback\":[\"Good.\"],\"category_scores\":{\"Content\":88,\"Structure\":85,` +
	`\"Analysis\":86,\"Language\":90,\"References\":80}}"}]}}]}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeEssay(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "essay.txt")
	text := strings.Repeat("Rivers shape the land they cross and the people who live beside them. ", 20)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestAnalyzeCommand_EndToEnd(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply))
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", srv.URL)
	t.Setenv("DB_URL", filepath.Join(dir, "history.db"))

	mdPath := filepath.Join(dir, "report.md")
	out, err := execute(t, "analyze", writeEssay(t), "--markdown", mdPath)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, out, "**Grade: B+ (87/100)**")
	assert.Contains(t, out, "Strategy: DIRECT")

	written, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "## Rivers")

	out, err = execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "essay.txt")
	assert.Contains(t, out, "B+")
}

func TestAnalyzeCommand_RequiresAPIKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	_, err := execute(t, "analyze", writeEssay(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestAnalyzeCommand_RejectsExtension(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	path := filepath.Join(t.TempDir(), "essay.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err := execute(t, "analyze", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file extension")
}

func TestExtractCommand(t *testing.T) {
	out, err := execute(t, "extract", writeEssay(t))
	require.NoError(t, err)
	assert.Contains(t, out, "usable      true")
	assert.Contains(t, out, "strategy    direct")
}

func TestHistoryCommand_RequiresDB(t *testing.T) {
	t.Setenv("DB_URL", "")
	_, err := execute(t, "history", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")
}
