package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-extractor/internal/common"
)

// Client talks to an OpenAI-compatible vision/document service over plain
// chat/completions. Every round-trip uses temperature 0 and a fixed output
// token budget; the response is always a single text message.
type Client struct {
	cfg    common.AIConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg common.AIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Available reports whether the service is configured.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}

// complete issues one chat round-trip with the given content parts and
// returns the trimmed text of the first choice.
func (c *Client) complete(ctx context.Context, stage string, parts []map[string]any) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": parts},
		},
	}

	c.logger.Info("ai.request",
		"req_id", rid, "stage", stage, "model", c.cfg.Model, "parts", len(parts))

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("ai.http_error",
			"req_id", rid, "stage", stage, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("ai.decode_error",
			"req_id", rid, "stage", stage, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("ai.no_choices",
			"req_id", rid, "stage", stage,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("no choices in ai response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("ai.response",
		"req_id", rid, "stage", stage, "chars", len(content),
		"elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			c.logger.Warn("ai response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ai status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}
	return raw, nil
}

// Content part constructors for the multimodal request body.

func textPart(text string) map[string]any {
	return map[string]any{"type": "text", "text": text}
}

func imagePart(pngBytes []byte) map[string]any {
	return map[string]any{
		"type": "image_url",
		"image_url": map[string]any{
			"url": dataURL("image/png", pngBytes),
		},
	}
}

func filePart(filename string, pdfBytes []byte) map[string]any {
	return map[string]any{
		"type": "file",
		"file": map[string]any{
			"filename":  filename,
			"file_data": dataURL("application/pdf", pdfBytes),
		},
	}
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
