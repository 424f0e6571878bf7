/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/mohitagr18/portfolio-agent/engine"
)

// querier is the runtime surface the server talks to.
type querier interface {
	Query(ctx context.Context, userID, sessionID, message string) engine.QueryResult
}

// chatRequest is one conversational turn from the browser. The browser owns
// the transcript; the server only threads the engine session id back.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func newMux(q querier, page []byte) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChat(q, w, r)
	})
	return mux
}

func handleChat(q querier, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	result := q.Query(r.Context(), "web_user", req.SessionID, req.Message)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		clog.ErrorContextf(r.Context(), "encoding response: %v", err)
	}
}
