package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Insight is the analysis payload returned by the insight webhook. Alerts and
// predictions are free-form objects produced by the analysis workflow.
type Insight struct {
	Alerts      []json.RawMessage `json:"alerts"`
	Predictions []json.RawMessage `json:"predictions"`
	Summary     json.RawMessage   `json:"summary,omitempty"`
}

// InsightShape names the envelope an insight payload arrived in.
type InsightShape string

const (
	ShapeBare          InsightShape = "bare"
	ShapeNested        InsightShape = "recommendations"
	ShapeArrayWrapped  InsightShape = "array"
	ShapeOutputWrapped InsightShape = "output"
)

// ErrUnrecognizedInsight is returned when no known envelope matches.
var ErrUnrecognizedInsight = errors.New("unrecognized insight payload")

// insightDecoder tries one envelope; ok is false when the shape does not apply.
type insightDecoder struct {
	shape  InsightShape
	decode func(data []byte) (*Insight, bool)
}

// insightDecoders is the fallthrough order: bare object, nested under
// "recommendations", array whose first element nests it, then the legacy
// "output" wrapper.
var insightDecoders = []insightDecoder{
	{ShapeBare, decodeBareInsight},
	{ShapeNested, decodeNestedInsight},
	{ShapeArrayWrapped, decodeArrayInsight},
	{ShapeOutputWrapped, decodeOutputInsight},
}

// DecodeInsight decodes a webhook response by trying each known envelope in order.
func DecodeInsight(data []byte) (Insight, InsightShape, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Insight{}, "", fmt.Errorf("decode insight: %w: empty body", ErrUnrecognizedInsight)
	}
	for _, d := range insightDecoders {
		if in, ok := d.decode(data); ok {
			return normalizeInsight(*in), d.shape, nil
		}
	}
	return Insight{}, "", fmt.Errorf("decode insight: %w", ErrUnrecognizedInsight)
}

func normalizeInsight(in Insight) Insight {
	if in.Alerts == nil {
		in.Alerts = []json.RawMessage{}
	}
	if in.Predictions == nil {
		in.Predictions = []json.RawMessage{}
	}
	return in
}

// decodeBareInsight matches an object carrying at least one insight key.
func decodeBareInsight(data []byte) (*Insight, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false
	}
	_, hasAlerts := probe["alerts"]
	_, hasPredictions := probe["predictions"]
	_, hasSummary := probe["summary"]
	if !hasAlerts && !hasPredictions && !hasSummary {
		return nil, false
	}
	var in Insight
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, false
	}
	return &in, true
}

func decodeNestedInsight(data []byte) (*Insight, bool) {
	var env struct {
		Recommendations json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &env); err != nil || len(env.Recommendations) == 0 {
		return nil, false
	}
	return decodeBareInsight(env.Recommendations)
}

func decodeArrayInsight(data []byte) (*Insight, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
		return nil, false
	}
	return decodeNestedInsight(items[0])
}

func decodeOutputInsight(data []byte) (*Insight, bool) {
	var env struct {
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &env); err != nil || len(env.Output) == 0 {
		return nil, false
	}
	return decodeBareInsight(env.Output)
}
