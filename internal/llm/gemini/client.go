package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/joseph-ayodele/assignment-feedback/internal/llm"
)

const providerName = "gemini"

// Config for the Gemini client.
type Config struct {
	APIKey      string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL     string        // default https://generativelanguage.googleapis.com/v1beta
	Model       string        // default gemini-2.0-flash
	Temperature float32       // 0..2
	Timeout     time.Duration // per request
}

// Client talks to the generateContent endpoint. It holds no per-request state and
// performs no retries.
type Client struct {
	cfg    Config
	http   *resty.Client
	logger *slog.Logger
}

var _ llm.AssessmentProvider = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey)
	return &Client{cfg: cfg, http: rc, logger: logger}
}

// Model reports the model the client sends requests to.
func (c *Client) Model() string { return c.cfg.Model }

// AssessText sends the prompt as the system instruction and the document text as user content.
func (c *Client) AssessText(ctx context.Context, prompt, text string) (string, error) {
	parts := []map[string]any{{"text": text}}
	return c.generate(ctx, "llm.assess_text", prompt, parts)
}

// AssessDocument sends the raw document inline next to the prompt.
func (c *Client) AssessDocument(ctx context.Context, prompt string, data []byte, mediaType string) (string, error) {
	parts := []map[string]any{
		{"inline_data": map[string]any{
			"mime_type": mediaType,
			"data":      base64.StdEncoding.EncodeToString(data),
		}},
		{"text": prompt},
	}
	return c.generate(ctx, "llm.assess_document", prompt, parts)
}

func (c *Client) generate(ctx context.Context, event, system string, parts []map[string]any) (string, error) {
	start := time.Now()
	c.logger.Info(event+".start", "provider", providerName, "model", c.cfg.Model, "parts", len(parts))

	body := map[string]any{
		"systemInstruction": map[string]any{"parts": []map[string]any{{"text": system}}},
		"contents":          []map[string]any{{"role": "user", "parts": parts}},
		"generationConfig": map[string]any{
			"temperature":      c.cfg.Temperature,
			"responseMimeType": "application/json",
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/models/" + c.cfg.Model + ":generateContent")
	if err != nil {
		c.logger.Error(event+".send_error", "provider", providerName, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", llm.NewTransportError(providerName, err)
	}
	if resp.IsError() {
		c.logger.Error(event+".status_error", "provider", providerName, "status", resp.StatusCode(),
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", llm.NewStatusError(providerName, resp.StatusCode(), resp.Body())
	}

	out, err := replyText(resp.Body())
	if err != nil {
		c.logger.Error(event+".empty_reply", "provider", providerName, "error", err)
		return "", &llm.ProviderError{Kind: llm.Permanent, Provider: providerName, StatusCode: resp.StatusCode(), Err: err}
	}
	c.logger.Info(event+".ok", "provider", providerName, "reply_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// replyText joins the text parts of the first candidate.
func replyText(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", errors.New("decode gemini response: invalid json")
	}
	doc := gjson.ParseBytes(raw)
	if reason := doc.Get("promptFeedback.blockReason").String(); reason != "" {
		return "", fmt.Errorf("prompt blocked: %s", reason)
	}
	cand := doc.Get("candidates.0")
	if !cand.Exists() {
		return "", errors.New("no candidates in gemini response")
	}
	var b strings.Builder
	for _, part := range cand.Get("content.parts.#.text").Array() {
		b.WriteString(part.String())
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("candidate has no text (finish reason %q)", cand.Get("finishReason").String())
	}
	return strings.TrimSpace(b.String()), nil
}
