package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPRecognizer calls a NER sidecar service (e.g. a spaCy model behind a
// small HTTP wrapper). Request: {"text": ...}; response: {"spans": [...]}.
type HTTPRecognizer struct {
	Endpoint string
	Client   *http.Client
	Logger   *slog.Logger
}

func NewHTTPRecognizer(endpoint string, timeout time.Duration, logger *slog.Logger) *HTTPRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPRecognizer{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
		Logger:   logger,
	}
}

type recognizeRequest struct {
	Text string `json:"text"`
}

type recognizeResponse struct {
	Spans []Span `json:"spans"`
}

// Recognize posts the document text to the sidecar and decodes the spans.
func (r *HTTPRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(recognizeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		r.Logger.Error("ner.http.send_error", "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			r.Logger.Warn("ner.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	r.Logger.Info("ner.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var out recognizeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode spans: %w", err)
	}
	return out.Spans, nil
}
