// Package sheets fetches the inventory dataset from a published spreadsheet
// CSV export over HTTP.
package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client implements pipeline.Source against a CSV URL.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a sheet client. A zero timeout leaves requests unbounded.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch downloads and parses the CSV. A non-2xx status is an error.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("dataset source error: status %d: %s", resp.StatusCode, body)
	}

	rows, err := domain.ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	c.logger.Debug("dataset fetched", "rows", len(rows), "duration", time.Since(start))
	return rows, nil
}
