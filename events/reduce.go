/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package events

const (
	// FallbackResponse is returned when the stream produced no model text.
	FallbackResponse = "No response received"

	// DefaultSource labels citations whose retrieval context carried no
	// source locator.
	DefaultSource = "RAG Corpus"

	// maxCitationChars bounds the citation excerpt shown to the user.
	maxCitationChars = 200
)

// Reduction is the result of folding one session turn's event stream.
type Reduction struct {
	ResponseText string    `json:"response"`
	Citations    []Context `json:"citations"`
	SessionID    string    `json:"session_id"`
}

// Reduce folds an ordered, fully-drained event sequence into a Reduction.
//
// The response text is the LAST model text seen, not a concatenation: the
// runtime re-emits interim text around each tool exchange and only the final
// synthesis should reach the user. Citations accumulate across every tool
// result that carried contexts, in encounter order, without de-duplication.
// The session id is threaded through unchanged. Reduce is pure and never
// fails; unrecognized events are skipped.
func Reduce(sessionID string, evs []Event) Reduction {
	r := Reduction{
		ResponseText: FallbackResponse,
		SessionID:    sessionID,
	}
	for _, ev := range evs {
		switch ev.Kind {
		case KindModelText:
			r.ResponseText = ev.Text
		case KindToolResult:
			for _, c := range ev.Contexts {
				r.Citations = append(r.Citations, normalize(c))
			}
		}
	}
	return r
}

// normalize coerces a raw retrieval context into the citation shape exposed
// to the UI: excerpt capped at 200 characters, missing source replaced with
// the corpus sentinel.
func normalize(c Context) Context {
	if runes := []rune(c.Text); len(runes) > maxCitationChars {
		c.Text = string(runes[:maxCitationChars])
	}
	if c.SourceURI == "" {
		c.SourceURI = DefaultSource
	}
	return c
}
