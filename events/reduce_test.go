/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package events_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mohitagr18/portfolio-agent/events"
)

// raws converts JSON literals into a wire event stream.
func raws(t *testing.T, lines ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(lines))
	for _, l := range lines {
		if !json.Valid([]byte(l)) {
			t.Fatalf("invalid JSON literal: %s", l)
		}
		out = append(out, json.RawMessage(l))
	}
	return out
}

func modelText(text string) string {
	b, _ := json.Marshal(map[string]any{
		"content": map[string]any{
			"role":  "model",
			"parts": []any{map[string]any{"text": text}},
		},
	})
	return string(b)
}

func toolResult(tool string, contexts ...map[string]any) string {
	b, _ := json.Marshal(map[string]any{
		"content": map[string]any{
			"role": "user",
			"parts": []any{map[string]any{
				"function_response": map[string]any{
					"name":     tool,
					"response": map[string]any{"contexts": contexts},
				},
			}},
		},
	})
	return string(b)
}

func TestReduceEmptyStream(t *testing.T) {
	t.Parallel()
	got := events.Reduce("sess-1", nil)
	if got.ResponseText != events.FallbackResponse {
		t.Fatalf("expected fallback %q, got %q", events.FallbackResponse, got.ResponseText)
	}
	if len(got.Citations) != 0 {
		t.Fatalf("expected no citations, got %d", len(got.Citations))
	}
	if got.SessionID != "sess-1" {
		t.Fatalf("session id not threaded through, got %q", got.SessionID)
	}
}

func TestReduceSingleModelText(t *testing.T) {
	t.Parallel()
	evs := events.DecodeAll(raws(t, modelText("hello")))
	got := events.Reduce("s", evs)
	if got.ResponseText != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got.ResponseText)
	}
}

func TestReduceLastModelTextWins(t *testing.T) {
	t.Parallel()
	// Two model text events: the second overwrites the first, it is not
	// concatenated onto it.
	evs := events.DecodeAll(raws(t,
		`{"content":{"role":"model","parts":[{"text":"A"}]}}`,
		`{"content":{"role":"model","parts":[{"text":"B"}]}}`,
	))
	got := events.Reduce("s", evs)
	if got.ResponseText != "B" {
		t.Fatalf("expected last text %q to win, got %q", "B", got.ResponseText)
	}
}

func TestReduceCitationsAccumulateWithoutDedup(t *testing.T) {
	t.Parallel()
	ctx := map[string]any{"text": "same passage", "source_uri": "gs://corpus/doc"}
	evs := events.DecodeAll(raws(t,
		toolResult("rag_retrieval", ctx),
		modelText("interim"),
		toolResult("rag_retrieval", ctx),
		modelText("final"),
	))
	got := events.Reduce("s", evs)
	if got.ResponseText != "final" {
		t.Fatalf("expected %q, got %q", "final", got.ResponseText)
	}
	if len(got.Citations) != 2 {
		t.Fatalf("expected 2 citations (duplicates kept), got %d", len(got.Citations))
	}
	want := events.Context{Text: "same passage", SourceURI: "gs://corpus/doc"}
	for i, c := range got.Citations {
		if diff := cmp.Diff(want, c); diff != "" {
			t.Fatalf("citation %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestReduceCitationNormalization(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("x", 450)
	evs := events.DecodeAll(raws(t,
		toolResult("rag_retrieval",
			map[string]any{"text": long},
			map[string]any{"text": "short", "source_uri": "gs://corpus/a", "distance": 0.25},
		),
	))
	got := events.Reduce("s", evs)
	if len(got.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(got.Citations))
	}
	if n := len([]rune(got.Citations[0].Text)); n != 200 {
		t.Fatalf("expected excerpt truncated to 200 chars, got %d", n)
	}
	if got.Citations[0].SourceURI != events.DefaultSource {
		t.Fatalf("expected default source %q, got %q", events.DefaultSource, got.Citations[0].SourceURI)
	}
	if got.Citations[1].Distance != "0.25" {
		t.Fatalf("expected distance %q, got %q", "0.25", got.Citations[1].Distance)
	}
}

func TestReduceIgnoresMalformedEvents(t *testing.T) {
	t.Parallel()
	evs := events.DecodeAll(raws(t,
		`"just a string"`,
		`42`,
		`{"no_content":true}`,
		`{"content":"not an object"}`,
		`{"content":{"role":"model"}}`,
		modelText("survives"),
	))
	got := events.Reduce("s", evs)
	if got.ResponseText != "survives" {
		t.Fatalf("malformed events must not affect the reduction, got %q", got.ResponseText)
	}
	if len(got.Citations) != 0 {
		t.Fatalf("expected no citations, got %d", len(got.Citations))
	}
}

func TestReduceThreadsSessionID(t *testing.T) {
	t.Parallel()
	streams := [][]json.RawMessage{
		nil,
		raws(t, modelText("answer")),
		raws(t, toolResult("rag_retrieval", map[string]any{"text": "p"})),
	}
	for _, s := range streams {
		got := events.Reduce("session-42", events.DecodeAll(s))
		if got.SessionID != "session-42" {
			t.Fatalf("expected session id preserved, got %q", got.SessionID)
		}
	}
}

func TestReduceSkipsContextsWithoutText(t *testing.T) {
	t.Parallel()
	evs := events.DecodeAll(raws(t,
		toolResult("rag_retrieval",
			map[string]any{"source_uri": "gs://corpus/a"},
			map[string]any{"text": "kept"},
		),
	))
	got := events.Reduce("s", evs)
	if len(got.Citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(got.Citations))
	}
	if got.Citations[0].Text != "kept" {
		t.Fatalf("expected %q, got %q", "kept", got.Citations[0].Text)
	}
}
