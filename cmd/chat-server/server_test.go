/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohitagr18/portfolio-agent/engine"
	"github.com/mohitagr18/portfolio-agent/events"
)

type stubQuerier struct {
	gotSessionID string
	gotMessage   string
	result       engine.QueryResult
}

func (s *stubQuerier) Query(_ context.Context, _, sessionID, message string) engine.QueryResult {
	s.gotSessionID = sessionID
	s.gotMessage = message
	return s.result
}

func TestChatTurn(t *testing.T) {
	t.Parallel()
	stub := &stubQuerier{result: engine.QueryResult{
		Reduction: events.Reduction{
			ResponseText: "The article covers...",
			Citations:    []events.Context{{Text: "passage", SourceURI: "gs://corpus/a.md"}},
			SessionID:    "sess-1",
		},
		Tools: []events.ToolUse{{Tool: "rag_retrieval", Completed: true, Retrieved: 1}},
	}}
	mux := newMux(stub, []byte("<html></html>"))

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message": "summarize the style coach article", "session_id": "sess-1"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if stub.gotSessionID != "sess-1" || stub.gotMessage != "summarize the style coach article" {
		t.Fatalf("unexpected query: session=%q message=%q", stub.gotSessionID, stub.gotMessage)
	}

	var body struct {
		Response  string           `json:"response"`
		Citations []events.Context `json:"citations"`
		SessionID string           `json:"session_id"`
		Tools     []events.ToolUse `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Response != "The article covers..." || body.SessionID != "sess-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(body.Citations) != 1 || body.Citations[0].SourceURI != "gs://corpus/a.md" {
		t.Fatalf("unexpected citations: %v", body.Citations)
	}
	if len(body.Tools) != 1 || body.Tools[0].Tool != "rag_retrieval" {
		t.Fatalf("unexpected tools: %v", body.Tools)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	t.Parallel()
	mux := newMux(&stubQuerier{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"session_id": "s"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatRejectsGet(t *testing.T) {
	t.Parallel()
	mux := newMux(&stubQuerier{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	mux := newMux(&stubQuerier{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	mux := newMux(&stubQuerier{}, []byte("<html>chat</html>"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "chat") {
		t.Fatalf("unexpected index response: %d %q", rec.Code, rec.Body)
	}

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rec.Code)
	}
}
