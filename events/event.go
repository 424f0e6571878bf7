/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package events models the event stream emitted by an agent session and
// reduces it into a final answer with citations.
//
// The remote runtime emits loosely-shaped JSON records. Decode converts them
// once, at the boundary, into a closed set of variants so that Reduce is a
// total function over typed events instead of ad-hoc shape sniffing.
package events

import (
	"encoding/json"
	"strconv"
)

// Kind discriminates the event variants.
type Kind int

const (
	// KindUnrecognized marks records that do not match any known shape.
	// They are carried through so callers can count or log them, but they
	// never affect a reduction.
	KindUnrecognized Kind = iota

	// KindModelText is a model-authored text part.
	KindModelText

	// KindToolCall is a tool invocation requested by the model.
	KindToolCall

	// KindToolResult is a completed tool invocation, possibly carrying
	// retrieval contexts.
	KindToolResult
)

// Context is a retrieval passage surfaced by a tool result, used as a citation.
type Context struct {
	Text      string `json:"text"`
	SourceURI string `json:"source_uri"`
	Distance  string `json:"distance,omitempty"`
}

// Event is one decoded variant from the session stream.
type Event struct {
	Kind Kind

	// Text is set for KindModelText.
	Text string

	// Tool is set for KindToolCall and KindToolResult.
	Tool string

	// Args is set for KindToolCall.
	Args map[string]any

	// Contexts is set for KindToolResult when the tool response carried a
	// contexts list. Values are raw, not yet normalized into citations.
	Contexts []Context
}

// DecodeAll decodes a drained event stream into typed events, in order.
func DecodeAll(raws []json.RawMessage) []Event {
	var out []Event
	for _, raw := range raws {
		out = append(out, Decode(raw)...)
	}
	return out
}

// Decode converts one wire record into zero or more typed events. A record may
// carry several parts, each becoming one event. Records that are not JSON
// objects, lack a content object, or carry only unknown parts decode to a
// single Unrecognized event. Decode never fails.
func Decode(raw json.RawMessage) []Event {
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return []Event{{Kind: KindUnrecognized}}
	}

	content, ok := record["content"].(map[string]any)
	if !ok {
		return []Event{{Kind: KindUnrecognized}}
	}
	role, _ := content["role"].(string)
	parts, ok := content["parts"].([]any)
	if !ok {
		return []Event{{Kind: KindUnrecognized}}
	}

	var out []Event
	for _, p := range parts {
		part, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if ev, ok := decodePart(role, part); ok {
			out = append(out, ev)
		}
	}
	if len(out) == 0 {
		return []Event{{Kind: KindUnrecognized}}
	}
	return out
}

func decodePart(role string, part map[string]any) (Event, bool) {
	// Thought parts are model-internal reasoning, not answer text.
	if thought, _ := part["thought"].(bool); thought {
		return Event{}, false
	}

	if text, ok := part["text"].(string); ok && role == "model" {
		return Event{Kind: KindModelText, Text: text}, true
	}

	if fc, ok := part["function_call"].(map[string]any); ok {
		name, _ := fc["name"].(string)
		args, _ := fc["args"].(map[string]any)
		return Event{Kind: KindToolCall, Tool: name, Args: args}, true
	}

	if fr, ok := part["function_response"].(map[string]any); ok && role == "user" {
		name, _ := fr["name"].(string)
		ev := Event{Kind: KindToolResult, Tool: name}
		if response, ok := fr["response"].(map[string]any); ok {
			if contexts, ok := response["contexts"].([]any); ok {
				for _, c := range contexts {
					cm, ok := c.(map[string]any)
					if !ok {
						continue
					}
					if _, ok := cm["text"].(string); !ok {
						continue
					}
					ev.Contexts = append(ev.Contexts, decodeContext(cm))
				}
			}
		}
		return ev, true
	}

	return Event{}, false
}

func decodeContext(m map[string]any) Context {
	c := Context{}
	c.Text, _ = m["text"].(string)
	c.SourceURI, _ = m["source_uri"].(string)
	switch d := m["distance"].(type) {
	case string:
		c.Distance = d
	case float64:
		c.Distance = strconv.FormatFloat(d, 'g', -1, 64)
	}
	return c
}
