/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mohitagr18/portfolio-agent/events"
	"google.golang.org/genai"
)

func TestModelEventRoundTripsThroughDecoder(t *testing.T) {
	t.Parallel()
	raw, err := modelEvent([]*genai.Part{
		{Text: "thinking about routing", Thought: true},
		{FunctionCall: &genai.FunctionCall{Name: "rag_retrieval", Args: map[string]any{"query": "style coach"}}},
		{Text: "Let me search."},
	})
	if err != nil {
		t.Fatalf("modelEvent: %v", err)
	}

	got := events.Decode(json.RawMessage(raw))
	want := []events.Event{
		{Kind: events.KindToolCall, Tool: "rag_retrieval", Args: map[string]any{"query": "style coach"}},
		{Kind: events.KindModelText, Text: "Let me search."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded events (-want +got):\n%s", diff)
	}
}

func TestToolResultEventCarriesContexts(t *testing.T) {
	t.Parallel()
	raw, err := toolResultEvent([]*genai.FunctionResponse{{
		Name: "rag_retrieval",
		Response: map[string]any{
			"status": "success",
			"contexts": []map[string]any{
				{"text": "passage", "source_uri": "gs://corpus/a.md", "distance": 0.4},
			},
		},
	}})
	if err != nil {
		t.Fatalf("toolResultEvent: %v", err)
	}

	got := events.Decode(json.RawMessage(raw))
	if len(got) != 1 || got[0].Kind != events.KindToolResult {
		t.Fatalf("expected one tool result, got %v", got)
	}
	if len(got[0].Contexts) != 1 {
		t.Fatalf("expected one context, got %v", got[0].Contexts)
	}
	ctx := got[0].Contexts[0]
	if ctx.Text != "passage" || ctx.SourceURI != "gs://corpus/a.md" || ctx.Distance != "0.4" {
		t.Errorf("unexpected context: %+v", ctx)
	}
}

func TestToolResultEventWithoutContexts(t *testing.T) {
	t.Parallel()
	raw, err := toolResultEvent([]*genai.FunctionResponse{{
		Name:     "list_repositories",
		Response: map[string]any{"result": "[]"},
	}})
	if err != nil {
		t.Fatalf("toolResultEvent: %v", err)
	}

	got := events.Decode(json.RawMessage(raw))
	if len(got) != 1 || got[0].Kind != events.KindToolResult {
		t.Fatalf("expected one tool result, got %v", got)
	}
	if len(got[0].Contexts) != 0 {
		t.Errorf("expected no contexts, got %v", got[0].Contexts)
	}
}
