/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package events_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mohitagr18/portfolio-agent/events"
)

func TestDecodeVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want []events.Event
	}{{
		name: "model text",
		raw:  `{"content":{"role":"model","parts":[{"text":"hi"}]}}`,
		want: []events.Event{{Kind: events.KindModelText, Text: "hi"}},
	}, {
		name: "thought part skipped",
		raw:  `{"content":{"role":"model","parts":[{"text":"reasoning...","thought":true},{"text":"answer"}]}}`,
		want: []events.Event{{Kind: events.KindModelText, Text: "answer"}},
	}, {
		name: "user role text is not model text",
		raw:  `{"content":{"role":"user","parts":[{"text":"question"}]}}`,
		want: []events.Event{{Kind: events.KindUnrecognized}},
	}, {
		name: "function call",
		raw:  `{"content":{"role":"model","parts":[{"function_call":{"name":"list_repositories","args":{"username":"mohitagr18"}}}]}}`,
		want: []events.Event{{
			Kind: events.KindToolCall,
			Tool: "list_repositories",
			Args: map[string]any{"username": "mohitagr18"},
		}},
	}, {
		name: "function response with contexts",
		raw: `{"content":{"role":"user","parts":[{"function_response":{"name":"rag_retrieval",` +
			`"response":{"contexts":[{"text":"passage","source_uri":"gs://c/d","distance":0.5}]}}}]}}`,
		want: []events.Event{{
			Kind: events.KindToolResult,
			Tool: "rag_retrieval",
			Contexts: []events.Context{{
				Text: "passage", SourceURI: "gs://c/d", Distance: "0.5",
			}},
		}},
	}, {
		name: "function response without contexts",
		raw:  `{"content":{"role":"user","parts":[{"function_response":{"name":"get_repository_info","response":{"ok":true}}}]}}`,
		want: []events.Event{{Kind: events.KindToolResult, Tool: "get_repository_info"}},
	}, {
		name: "mixed parts in one record",
		raw: `{"content":{"role":"model","parts":[` +
			`{"text":"let me check"},` +
			`{"function_call":{"name":"get_file_contents","args":{"owner":"o","repo":"r","path":"README.md"}}}]}}`,
		want: []events.Event{
			{Kind: events.KindModelText, Text: "let me check"},
			{Kind: events.KindToolCall, Tool: "get_file_contents", Args: map[string]any{
				"owner": "o", "repo": "r", "path": "README.md",
			}},
		},
	}, {
		name: "not an object",
		raw:  `[1,2,3]`,
		want: []events.Event{{Kind: events.KindUnrecognized}},
	}, {
		name: "missing content",
		raw:  `{"usage_metadata":{"prompt_token_count":10}}`,
		want: []events.Event{{Kind: events.KindUnrecognized}},
	}, {
		name: "parts not a list",
		raw:  `{"content":{"role":"model","parts":"oops"}}`,
		want: []events.Event{{Kind: events.KindUnrecognized}},
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := events.Decode(json.RawMessage(tc.raw))
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestActivity(t *testing.T) {
	t.Parallel()
	evs := events.DecodeAll([]json.RawMessage{
		json.RawMessage(`{"content":{"role":"model","parts":[{"function_call":{"name":"rag_retrieval","args":{"query":"q"}}}]}}`),
		json.RawMessage(`{"content":{"role":"user","parts":[{"function_response":{"name":"rag_retrieval",` +
			`"response":{"contexts":[{"text":"a"},{"text":"b"}]}}}]}}`),
		json.RawMessage(`{"content":{"role":"model","parts":[{"text":"done"}]}}`),
	})
	got := events.Activity(evs)
	want := []events.ToolUse{
		{Tool: "rag_retrieval"},
		{Tool: "rag_retrieval", Completed: true, Retrieved: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Activity mismatch (-want +got):\n%s", diff)
	}
}
