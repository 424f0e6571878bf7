/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry counters for agent operations.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// GenAI records token usage and tool calls for the local agent runtime.
// Counter creation degrades gracefully: a counter that fails to initialize
// is replaced with a no-op rather than failing the agent.
type GenAI struct {
	meter            metric.Meter
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	toolCalls        metric.Int64Counter
	citations        metric.Int64Counter
}

// NewGenAI creates the counters under the given meter name. The model name is
// recorded as a dimension on every metric rather than baked into the meter.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name,
			metric.WithDescription(desc),
			metric.WithUnit(unit))
		if err != nil {
			slog.Warn("Failed to create counter, metric disabled", "counter", name, "error", err)
			return noop.Int64Counter{}
		}
		return c
	}

	return &GenAI{
		meter:            meter,
		promptTokens:     counter("genai.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter("genai.token.completion", "The number of completion tokens used", "{tokens}"),
		toolCalls:        counter("genai.tool.calls", "The number of tool calls made during execution", "{calls}"),
		citations:        counter("genai.citations", "The number of retrieval citations surfaced to users", "{citations}"),
	}
}

// RecordTokens records prompt and completion token usage for one model call.
func (m *GenAI) RecordTokens(ctx context.Context, model string, prompt, completion int64) {
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.promptTokens.Add(ctx, prompt, attrs)
	m.completionTokens.Add(ctx, completion, attrs)
}

// RecordToolCall records one tool invocation.
func (m *GenAI) RecordToolCall(ctx context.Context, model, tool string) {
	m.toolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("tool", tool),
	))
}

// RecordCitations records the number of citations in a reduction.
func (m *GenAI) RecordCitations(ctx context.Context, model string, count int64) {
	if count == 0 {
		return
	}
	m.citations.Add(ctx, count, metric.WithAttributes(attribute.String("model", model)))
}
