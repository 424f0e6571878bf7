/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package engine is a client for agents deployed on Vertex AI Agent Engine.
//
// It speaks the reasoningEngines REST surface directly: session creation and
// streaming queries go through the generic :query / :streamQuery methods, and
// deployment management uses the standard resource collection.
package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/mohitagr18/portfolio-agent/config"
	"github.com/mohitagr18/portfolio-agent/events"
	"github.com/mohitagr18/portfolio-agent/metrics"
	"github.com/mohitagr18/portfolio-agent/retry"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// cloudPlatformScope is the OAuth scope for all Vertex AI calls.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// requestTimeout bounds the non-streaming management calls. The streaming
// query carries no deadline: a multi-tool turn legitimately runs well past
// any fixed budget, and truncating a healthy stream loses its events.
const requestTimeout = 30 * time.Second

// Client calls a deployed Agent Engine resource.
type Client struct {
	cfg          *config.Config
	http         *http.Client
	baseURL      string
	retryCfg     retry.Config
	genaiMetrics *metrics.GenAI
}

// New creates a Client using application default credentials.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := cfg.ValidateCloud(); err != nil {
		return nil, err
	}
	ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("loading default credentials: %w", err)
	}
	return &Client{
		cfg:          cfg,
		http:         oauth2.NewClient(ctx, ts),
		baseURL:      fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", cfg.Location),
		retryCfg:     retry.DefaultConfig(),
		genaiMetrics: metrics.NewGenAI("portfolio.agent"),
	}, nil
}

// NewWithClient creates a Client with an explicit HTTP client and base URL.
// Used by tests.
func NewWithClient(cfg *config.Config, httpClient *http.Client, baseURL string) *Client {
	return &Client{
		cfg:          cfg,
		http:         httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		genaiMetrics: metrics.NewGenAI("portfolio.agent"),
	}
}

// QueryResult is the reduced outcome of one conversational turn.
type QueryResult struct {
	events.Reduction
	Tools []events.ToolUse `json:"tools,omitempty"`
}

// Query runs one conversational turn against the deployed agent: it ensures a
// session, collects the full event stream, and reduces it to a displayable
// result. Transport failures surface as a degraded ResponseText rather than an
// error so a chat surface always has something to render.
func (c *Client) Query(ctx context.Context, userID, sessionID, message string) QueryResult {
	if sessionID == "" {
		created, err := c.CreateSession(ctx, userID)
		if err != nil {
			return QueryResult{Reduction: events.Reduction{
				ResponseText: fmt.Sprintf("Error querying agent: %s", err),
				SessionID:    sessionID,
			}}
		}
		sessionID = created
	}

	raw, err := c.StreamQuery(ctx, userID, sessionID, message)
	if err != nil {
		return QueryResult{Reduction: events.Reduction{
			ResponseText: fmt.Sprintf("Error querying agent: %s", err),
			SessionID:    sessionID,
		}}
	}

	evs := events.DecodeAll(raw)
	reduction := events.Reduce(sessionID, evs)
	c.genaiMetrics.RecordCitations(ctx, c.cfg.Model, int64(len(reduction.Citations)))
	return QueryResult{
		Reduction: reduction,
		Tools:     events.Activity(evs),
	}
}

// CreateSession creates a conversation session for userID and returns its id.
func (c *Client) CreateSession(ctx context.Context, userID string) (string, error) {
	body, err := c.post(ctx, c.agentURL(":query"), map[string]any{
		"classMethod": "create_session",
		"input":       map[string]any{"user_id": userID},
	})
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	var resp struct {
		Output struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding session response: %w", err)
	}
	if resp.Output.ID != "" {
		return resp.Output.ID, nil
	}
	if resp.Output.Name != "" {
		parts := strings.Split(resp.Output.Name, "/")
		return parts[len(parts)-1], nil
	}
	return "", fmt.Errorf("session response had no id: %s", body)
}

// StreamQuery sends a message on an existing session and returns the complete
// event stream. The stream is drained before returning; a failure mid-stream
// returns the error and no events, never a partial prefix.
func (c *Client) StreamQuery(ctx context.Context, userID, sessionID, message string) ([]json.RawMessage, error) {
	clog.FromContext(ctx).With("session_id", sessionID).Info("Querying agent")

	return retry.Do(ctx, c.retryCfg, "stream_query", retry.Transient,
		func() ([]json.RawMessage, error) {
			return c.streamOnce(ctx, userID, sessionID, message)
		})
}

func (c *Client) streamOnce(ctx context.Context, userID, sessionID, message string) ([]json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"classMethod": "stream_query",
		"input": map[string]any{
			"user_id":    userID,
			"session_id": sessionID,
			"message":    message,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.agentURL(":streamQuery"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("agent query returned HTTP %d: %s", resp.StatusCode, body)
	}

	// Events arrive as newline-delimited JSON objects.
	var raw []json.RawMessage
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		raw = append(raw, json.RawMessage(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event stream: %w", err)
	}
	return raw, nil
}

// agentURL builds a method URL for the configured agent resource.
func (c *Client) agentURL(method string) string {
	return fmt.Sprintf("%s/%s%s", c.baseURL, c.cfg.AgentResource, method)
}

// post issues a JSON POST and returns the response body.
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do executes a non-streaming request and returns the body, mapping non-2xx
// to errors. These calls carry a deadline; the streaming query does not.
func (c *Client) do(req *http.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()
	req = req.WithContext(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}
