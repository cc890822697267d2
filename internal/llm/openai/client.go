package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/assignment-feedback/internal/llm"
)

var _ llm.AssessmentProvider = (*Client)(nil)

// AssessText sends the prompt as the system message and the document text as the user message.
func (c *Client) AssessText(ctx context.Context, prompt, text string) (string, error) {
	start := time.Now()
	c.logger.Info("llm.assess_text.start",
		"provider", providerName,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
		"text_len", len(text),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": prompt},
			{"role": "user", "content": text},
		},
	}
	out, err := c.complete(ctx, body)
	if err != nil {
		c.logger.Error("llm.assess_text.error", "provider", providerName, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	c.logger.Info("llm.assess_text.ok", "provider", providerName, "reply_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// AssessDocument attaches the raw document to the user message: images as image_url parts,
// everything else as a file part carrying a base64 data URL.
func (c *Client) AssessDocument(ctx context.Context, prompt string, data []byte, mediaType string) (string, error) {
	start := time.Now()
	c.logger.Info("llm.assess_document.start",
		"provider", providerName,
		"model", c.cfg.Model,
		"media_type", mediaType,
		"bytes", len(data),
	)

	dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
	var attachment map[string]any
	if strings.HasPrefix(mediaType, "image/") {
		attachment = map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL}}
	} else {
		attachment = map[string]any{"type": "file", "file": map[string]any{
			"filename":  "assignment" + extFor(mediaType),
			"file_data": dataURL,
		}}
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": prompt},
				attachment,
			}},
		},
	}
	out, err := c.complete(ctx, body)
	if err != nil {
		c.logger.Error("llm.assess_document.error", "provider", providerName, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	c.logger.Info("llm.assess_document.ok", "provider", providerName, "reply_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (c *Client) complete(ctx context.Context, body map[string]any) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, err := llm.SendJSON(ctx, c.http, providerName, endpoint, body, headers, c.logger)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", &llm.ProviderError{Kind: llm.Permanent, Provider: providerName,
			Err: fmt.Errorf("decode openai response: %w", err)}
	}
	if len(cc.Choices) == 0 {
		return "", &llm.ProviderError{Kind: llm.Permanent, Provider: providerName,
			Err: errors.New("no choices in openai response")}
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func extFor(mediaType string) string {
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "text/markdown":
		return ".md"
	case "text/plain":
		return ".txt"
	default:
		return ""
	}
}
