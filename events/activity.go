/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package events

// ToolUse summarizes one tool exchange for progress display in the chat
// surfaces. A tool invocation and its completion appear as separate entries,
// in stream order.
type ToolUse struct {
	Tool      string `json:"tool"`
	Completed bool   `json:"completed"`
	Retrieved int    `json:"retrieved"`
}

// Activity extracts the tool exchanges from a decoded event stream.
// Model text and unrecognized events are ignored.
func Activity(evs []Event) []ToolUse {
	var uses []ToolUse
	for _, ev := range evs {
		switch ev.Kind {
		case KindToolCall:
			uses = append(uses, ToolUse{Tool: ev.Tool})
		case KindToolResult:
			uses = append(uses, ToolUse{
				Tool:      ev.Tool,
				Completed: true,
				Retrieved: len(ev.Contexts),
			})
		}
	}
	return uses
}
