// Package webhook calls the external analysis workflow that produces stock
// insights for the dashboard.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/observability"
)

// maxResponseBody bounds the insight payload read from the workflow.
const maxResponseBody = 4 << 20

// analyzeRequest is the fixed body the workflow expects.
type analyzeRequest struct {
	Action string `json:"action"`
}

// Client posts analysis requests to the insight webhook.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an insight webhook client.
func NewClient(url string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Analyze requests a fresh analysis and decodes whichever envelope the
// workflow answered with.
func (c *Client) Analyze(ctx context.Context) (domain.Insight, error) {
	in, err := c.analyze(ctx)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.InsightRequests.WithLabelValues(outcome).Inc()
	return in, err
}

func (c *Client) analyze(ctx context.Context) (domain.Insight, error) {
	body, err := json.Marshal(analyzeRequest{Action: "analyze"})
	if err != nil {
		return domain.Insight{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.Insight{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Insight{}, fmt.Errorf("insight request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.Insight{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Insight{}, fmt.Errorf("insight webhook error: status %d: %s", resp.StatusCode, truncate(data, 512))
	}

	in, shape, err := domain.DecodeInsight(data)
	if err != nil {
		return domain.Insight{}, err
	}
	c.logger.Debug("insight decoded", "shape", shape, "alerts", len(in.Alerts), "predictions", len(in.Predictions))
	return in, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
