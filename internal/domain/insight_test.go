package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInsight(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		shape       InsightShape
		alerts      int
		predictions int
		summary     string
	}{
		{
			name:        "bare",
			body:        `{"alerts":[{"city":"Mumbai"}],"predictions":[],"summary":"ok"}`,
			shape:       ShapeBare,
			alerts:      1,
			predictions: 0,
			summary:     `"ok"`,
		},
		{
			name:        "nested under recommendations",
			body:        `{"recommendations":{"alerts":[{"a":1},{"a":2}],"predictions":[{"p":1}]}}`,
			shape:       ShapeNested,
			alerts:      2,
			predictions: 1,
		},
		{
			name:        "array wrapped",
			body:        `[{"recommendations":{"predictions":[{"p":1}],"summary":{"text":"x"}}}]`,
			shape:       ShapeArrayWrapped,
			predictions: 1,
			summary:     `{"text":"x"}`,
		},
		{
			name:   "output wrapped",
			body:   `{"output":{"alerts":[{"a":1}]}}`,
			shape:  ShapeOutputWrapped,
			alerts: 1,
		},
		{
			name:   "bare wins over nested",
			body:   `{"alerts":[{"a":1}],"recommendations":{"alerts":[{"a":1},{"a":2}]}}`,
			shape:  ShapeBare,
			alerts: 1,
		},
		{
			name:    "surrounding whitespace",
			body:    "\n  {\"summary\":\"s\"}  \n",
			shape:   ShapeBare,
			summary: `"s"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, shape, err := DecodeInsight([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.shape, shape)
			assert.Len(t, in.Alerts, tt.alerts)
			assert.Len(t, in.Predictions, tt.predictions)
			assert.NotNil(t, in.Alerts)
			assert.NotNil(t, in.Predictions)
			if tt.summary == "" {
				assert.Empty(t, in.Summary)
			} else {
				assert.JSONEq(t, tt.summary, string(in.Summary))
			}
		})
	}
}

func TestDecodeInsight_Unrecognized(t *testing.T) {
	bodies := []string{
		``,
		`   `,
		`not json`,
		`{}`,
		`{"status":"queued"}`,
		`[]`,
		`[{"alerts":[]}]`,
		`{"recommendations":"later"}`,
		`{"output":null}`,
		`"text"`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			_, _, err := DecodeInsight([]byte(body))
			require.ErrorIs(t, err, ErrUnrecognizedInsight)
		})
	}
}

func TestDecodeInsight_PreservesPayload(t *testing.T) {
	in, _, err := DecodeInsight([]byte(`{"alerts":[{"city":"Pune","severity":"high"}]}`))
	require.NoError(t, err)

	var alert map[string]string
	require.NoError(t, json.Unmarshal(in.Alerts[0], &alert))
	assert.Equal(t, "Pune", alert["city"])
	assert.Equal(t, "high", alert["severity"])
}
