/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"encoding/json"

	"google.golang.org/genai"
)

// The local runtime emits its conversation in the same wire shape the remote
// Agent Engine streams, so both surfaces reduce through the same path.

func modelEvent(parts []*genai.Part) (json.RawMessage, error) {
	encoded := make([]map[string]any, 0, len(parts))
	for _, part := range parts {
		switch {
		case part.FunctionCall != nil:
			encoded = append(encoded, map[string]any{
				"function_call": map[string]any{
					"name": part.FunctionCall.Name,
					"args": part.FunctionCall.Args,
				},
			})
		case part.Text != "":
			p := map[string]any{"text": part.Text}
			if part.Thought {
				p["thought"] = true
			}
			encoded = append(encoded, p)
		}
	}
	return json.Marshal(map[string]any{
		"content": map[string]any{"role": "model", "parts": encoded},
	})
}

func toolResultEvent(responses []*genai.FunctionResponse) (json.RawMessage, error) {
	encoded := make([]map[string]any, 0, len(responses))
	for _, resp := range responses {
		encoded = append(encoded, map[string]any{
			"function_response": map[string]any{
				"name":     resp.Name,
				"response": resp.Response,
			},
		})
	}
	return json.Marshal(map[string]any{
		"content": map[string]any{"role": "user", "parts": encoded},
	})
}
