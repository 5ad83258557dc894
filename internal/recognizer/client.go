package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/nlavoie/expensed/internal/common"
	"github.com/nlavoie/expensed/internal/entity"
)

const prompt = "Analyze this receipt and extract the data into the specified JSON format. " +
	"Also choose the best 'category' from the allowed list based on merchant/items."

// Scanner turns receipt image bytes into structured (but untrusted) data.
type Scanner interface {
	ScanReceipt(ctx context.Context, data []byte, mimeType string) (entity.RawScanResult, error)
}

// Client calls the Gemini vision model with a structured-output constraint.
type Client struct {
	cfg    common.RecognizerConfig
	genai  *genai.Client
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg common.RecognizerConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{cfg: cfg, genai: gc, logger: logger}, nil
}

// ScanReceipt sends the image to the model and decodes the response into a
// RawScanResult. Empty or schema-violating model output surfaces as
// common.ErrRecognizer; it is never silently repaired beyond fence stripping.
func (c *Client) ScanReceipt(ctx context.Context, data []byte, mimeType string) (entity.RawScanResult, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("recognizer.scan.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"mime_type", mimeType,
		"bytes", len(data),
	)

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
				{Text: prompt},
			},
		},
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.Model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		c.logger.Error("recognizer.scan.call_failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.RawScanResult{}, fmt.Errorf("%w: generate content: %v", common.ErrRecognizer, err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		c.logger.Error("recognizer.scan.empty_response", "req_id", rid)
		return entity.RawScanResult{}, fmt.Errorf("%w: empty model response", common.ErrRecognizer)
	}
	cleaned := []byte(stripFences(raw))

	if err := ValidateJSONAgainstSchema(ReceiptJSONSchema(), cleaned); err != nil {
		c.logger.Error("recognizer.scan.schema_violation", "req_id", rid, "error", err)
		return entity.RawScanResult{}, fmt.Errorf("%w: %v", common.ErrRecognizer, err)
	}

	var out entity.RawScanResult
	if err := json.Unmarshal(cleaned, &out); err != nil {
		c.logger.Error("recognizer.scan.decode_error", "req_id", rid, "error", err)
		return entity.RawScanResult{}, fmt.Errorf("%w: decode: %v", common.ErrRecognizer, err)
	}

	c.logger.Info("recognizer.scan.ok",
		"req_id", rid,
		"merchant", out.Merchant,
		"items", len(out.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// stripFences removes Markdown code fences if the model ignored the JSON
// response mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
