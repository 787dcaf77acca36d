package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/observability"
)

func testClient(url string) (*Client, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return NewClient(url, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), m), m
}

func TestClient_Analyze(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare", `{"alerts":[{"city":"Mumbai"}],"predictions":[],"summary":{"text":"ok"}}`},
		{"nested", `{"recommendations":{"alerts":[{"city":"Mumbai"}],"predictions":[]}}`},
		{"array", `[{"recommendations":{"alerts":[{"city":"Mumbai"}]}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var req map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, map[string]string{"action": "analyze"}, req)

				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, m := testClient(srv.URL)
			in, err := c.Analyze(context.Background())
			require.NoError(t, err)
			require.Len(t, in.Alerts, 1)
			assert.JSONEq(t, `{"city":"Mumbai"}`, string(in.Alerts[0]))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.InsightRequests.WithLabelValues("success")))
		})
	}
}

func TestClient_Analyze_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"alerts":[]}`)
	}))
	defer srv.Close()

	c, m := testClient(srv.URL)
	_, err := c.Analyze(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InsightRequests.WithLabelValues("error")))
}

func TestClient_Analyze_Unrecognized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"message":"Workflow was started"}`)
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL)
	_, err := c.Analyze(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnrecognizedInsight))
}

func TestClient_Analyze_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := testClient(url)
	_, err := c.Analyze(context.Background())
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, []byte("abc"), truncate([]byte("abcdef"), 3))
	assert.Equal(t, []byte("ab"), truncate([]byte("ab"), 3))
}
