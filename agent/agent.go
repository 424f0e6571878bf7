/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package agent runs the portfolio assistant locally against Gemini,
// executing tool calls in-process instead of on a deployed Agent Engine
// resource. It emits the same event stream the remote runtime does.
package agent

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/mohitagr18/portfolio-agent/config"
	"github.com/mohitagr18/portfolio-agent/engine"
	"github.com/mohitagr18/portfolio-agent/events"
	"github.com/mohitagr18/portfolio-agent/metrics"
	"github.com/mohitagr18/portfolio-agent/prompt"
	"github.com/mohitagr18/portfolio-agent/retry"
	"github.com/mohitagr18/portfolio-agent/toolcall"
	"google.golang.org/genai"
)

// maxToolRounds bounds the tool-calling loop for a single turn.
const maxToolRounds = 12

// Runtime is the local agent runtime.
type Runtime struct {
	client          *genai.Client
	tools           map[string]toolcall.Metadata
	model           string
	temperature     float32
	maxOutputTokens int32
	instruction     string
	retryCfg        retry.Config
	genaiMetrics    *metrics.GenAI

	mu       sync.Mutex
	sessions map[string][]*genai.Content
}

// Option configures the runtime.
type Option func(*Runtime)

// WithModel overrides the configured Gemini model.
func WithModel(model string) Option {
	return func(r *Runtime) { r.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(r *Runtime) { r.temperature = t }
}

// WithMaxOutputTokens caps the response length.
func WithMaxOutputTokens(n int32) Option {
	return func(r *Runtime) { r.maxOutputTokens = n }
}

// WithRetryConfig overrides the backoff configuration for Vertex AI calls.
func WithRetryConfig(cfg retry.Config) Option {
	return func(r *Runtime) { r.retryCfg = cfg }
}

// New creates a local runtime with the given tools registered.
func New(ctx context.Context, cfg *config.Config, tools map[string]toolcall.Metadata, opts ...Option) (*Runtime, error) {
	if err := cfg.ValidateCloud(); err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.Project,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	tmpl, err := prompt.New(systemInstruction)
	if err != nil {
		return nil, fmt.Errorf("parsing system instruction: %w", err)
	}
	tmpl, err = tmpl.BindString("github_username", cfg.GitHubUsername)
	if err != nil {
		return nil, fmt.Errorf("binding system instruction: %w", err)
	}
	instruction, err := tmpl.Build()
	if err != nil {
		return nil, fmt.Errorf("building system instruction: %w", err)
	}

	r := &Runtime{
		client:          client,
		tools:           tools,
		model:           cfg.Model,
		temperature:     0.1,
		maxOutputTokens: 8192,
		instruction:     instruction,
		retryCfg:        retry.DefaultConfig(),
		genaiMetrics:    metrics.NewGenAI("portfolio.agent"),
		sessions:        make(map[string][]*genai.Content),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// CreateSession starts a new conversation and returns its id.
func (r *Runtime) CreateSession(_ context.Context, _ string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	id := hex.EncodeToString(buf)

	r.mu.Lock()
	r.sessions[id] = nil
	r.mu.Unlock()
	return id, nil
}

// Query runs one conversational turn and reduces it, mirroring the remote
// client so chat surfaces can swap runtimes.
func (r *Runtime) Query(ctx context.Context, userID, sessionID, message string) engine.QueryResult {
	if sessionID == "" {
		created, err := r.CreateSession(ctx, userID)
		if err != nil {
			return engine.QueryResult{Reduction: events.Reduction{
				ResponseText: fmt.Sprintf("Error querying agent: %s", err),
			}}
		}
		sessionID = created
	}

	raw, err := r.StreamQuery(ctx, userID, sessionID, message)
	if err != nil {
		return engine.QueryResult{Reduction: events.Reduction{
			ResponseText: fmt.Sprintf("Error querying agent: %s", err),
			SessionID:    sessionID,
		}}
	}

	evs := events.DecodeAll(raw)
	reduction := events.Reduce(sessionID, evs)
	r.genaiMetrics.RecordCitations(ctx, r.model, int64(len(reduction.Citations)))
	return engine.QueryResult{
		Reduction: reduction,
		Tools:     events.Activity(evs),
	}
}

// StreamQuery sends a message on a session and returns the complete event
// stream for the turn: model parts, tool calls, and tool results in order.
func (r *Runtime) StreamQuery(ctx context.Context, _ string, sessionID, message string) ([]json.RawMessage, error) {
	log := clog.FromContext(ctx)

	r.mu.Lock()
	history := r.sessions[sessionID]
	r.mu.Unlock()

	declarations := make([]*genai.FunctionDeclaration, 0, len(r.tools))
	for _, meta := range r.tools {
		declarations = append(declarations, meta.Definition)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(r.temperature),
		MaxOutputTokens: r.maxOutputTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: r.instruction}},
		},
	}
	if len(declarations) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	chat, err := r.client.Chats.Create(ctx, r.model, cfg, history)
	if err != nil {
		return nil, fmt.Errorf("creating chat with model %q: %w", r.model, err)
	}

	var raw []json.RawMessage
	send := []*genai.Part{{Text: message}}
	for round := 0; ; round++ {
		if round >= maxToolRounds {
			return nil, fmt.Errorf("tool loop exceeded %d rounds", maxToolRounds)
		}

		resp, err := retry.Do(ctx, r.retryCfg, "send_message", retry.Transient,
			func() (*genai.GenerateContentResponse, error) {
				return chat.Send(ctx, send...)
			})
		if err != nil {
			return nil, fmt.Errorf("sending message: %w", err)
		}
		if resp.UsageMetadata != nil {
			r.genaiMetrics.RecordTokens(ctx, r.model,
				int64(resp.UsageMetadata.PromptTokenCount),
				int64(resp.UsageMetadata.CandidatesTokenCount))
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, fmt.Errorf("no content generated")
		}

		parts := resp.Candidates[0].Content.Parts
		ev, err := modelEvent(parts)
		if err != nil {
			return nil, fmt.Errorf("encoding model event: %w", err)
		}
		raw = append(raw, ev)

		var calls []*genai.FunctionCall
		for _, part := range parts {
			if part.FunctionCall != nil {
				calls = append(calls, part.FunctionCall)
			}
		}
		if len(calls) == 0 {
			break
		}

		responses := make([]*genai.FunctionResponse, 0, len(calls))
		send = send[:0]
		for _, call := range calls {
			log.With("tool", call.Name).Info("Executing tool call")
			r.genaiMetrics.RecordToolCall(ctx, r.model, call.Name)

			var result *genai.FunctionResponse
			if meta, ok := r.tools[call.Name]; ok {
				result = meta.Handler(ctx, call)
			} else {
				log.With("tool", call.Name).Error("Unknown function call requested by model")
				result = toolcall.ErrorWithContext(call,
					fmt.Errorf("unknown function: %q", call.Name),
					map[string]any{"available_functions": slices.Sorted(maps.Keys(r.tools))})
			}
			responses = append(responses, result)
			send = append(send, &genai.Part{FunctionResponse: result})
		}

		ev, err = toolResultEvent(responses)
		if err != nil {
			return nil, fmt.Errorf("encoding tool event: %w", err)
		}
		raw = append(raw, ev)
	}

	r.mu.Lock()
	r.sessions[sessionID] = chat.History(false)
	r.mu.Unlock()
	return raw, nil
}
