/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package ragtools implements rag_retrieval, the knowledge-base search tool
// backed by a Vertex AI RAG corpus.
package ragtools

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"github.com/chainguard-dev/clog"
	gax "github.com/googleapis/gax-go/v2"
	"github.com/mohitagr18/portfolio-agent/config"
	"github.com/mohitagr18/portfolio-agent/retry"
	"github.com/mohitagr18/portfolio-agent/toolcall"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// topK is the number of retrieval passages requested per query.
const topK = 5

// retriever is the slice of the Vertex RAG client the tool needs.
type retriever interface {
	RetrieveContexts(ctx context.Context, req *aiplatformpb.RetrieveContextsRequest, opts ...gax.CallOption) (*aiplatformpb.RetrieveContextsResponse, error)
}

// Tools holds the RAG tool implementation.
type Tools struct {
	cfg      *config.Config
	client   retriever
	retryCfg retry.Config
	closeFn  func() error
}

// New creates the RAG tools with a regional Vertex RAG client.
func New(ctx context.Context, cfg *config.Config) (*Tools, error) {
	client, err := aiplatform.NewVertexRagClient(ctx,
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", cfg.Location)))
	if err != nil {
		return nil, fmt.Errorf("creating Vertex RAG client: %w", err)
	}
	return &Tools{
		cfg:      cfg,
		client:   client,
		retryCfg: retry.DefaultConfig(),
		closeFn:  client.Close,
	}, nil
}

// NewWithClient creates the tools around an existing retriever. Used by tests.
func NewWithClient(cfg *config.Config, client retriever) *Tools {
	return &Tools{cfg: cfg, client: client, retryCfg: retry.Config{}}
}

// Close releases the underlying client connection.
func (t *Tools) Close() error {
	if t.closeFn != nil {
		return t.closeFn()
	}
	return nil
}

// Metadata returns the tool declaration and handler.
func (t *Tools) Metadata() map[string]toolcall.Metadata {
	return map[string]toolcall.Metadata{
		"rag_retrieval": {
			Definition: &genai.FunctionDeclaration{
				Name:        "rag_retrieval",
				Description: "Retrieve relevant information from the knowledge base of stored documentation, articles, and blog posts.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "The search query to find relevant documents",
						},
					},
					Required: []string{"query"},
				},
			},
			Handler: t.retrieve,
		},
	}
}

func (t *Tools) retrieve(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	query, errResp := toolcall.Param[string](call, "query")
	if errResp != nil {
		return errResp
	}

	// No corpus means no retrieval backend; report it without a network call.
	if t.cfg.RAGCorpus == "" {
		return toolcall.Result(call, map[string]any{
			"status":        "error",
			"error_message": "RAG corpus not configured",
		})
	}

	clog.FromContext(ctx).With("query", query).With("corpus", t.cfg.RAGCorpus).
		Info("Querying RAG corpus")

	req := &aiplatformpb.RetrieveContextsRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s", t.cfg.Project, t.cfg.Location),
		DataSource: &aiplatformpb.RetrieveContextsRequest_VertexRagStore_{
			VertexRagStore: &aiplatformpb.RetrieveContextsRequest_VertexRagStore{
				RagResources: []*aiplatformpb.RetrieveContextsRequest_VertexRagStore_RagResource{{
					RagCorpus: t.cfg.RAGCorpus,
				}},
			},
		},
		Query: &aiplatformpb.RagQuery{
			Query: &aiplatformpb.RagQuery_Text{Text: query},
			RagRetrievalConfig: &aiplatformpb.RagRetrievalConfig{
				TopK: topK,
			},
		},
	}

	resp, err := retry.Do(ctx, t.retryCfg, "retrieve_contexts", retry.Transient,
		func() (*aiplatformpb.RetrieveContextsResponse, error) {
			return t.client.RetrieveContexts(ctx, req)
		})
	if err != nil {
		return toolcall.Result(call, map[string]any{
			"status":        "error",
			"error_message": fmt.Sprintf("RAG retrieval failed: %s", err),
		})
	}

	contexts := make([]map[string]any, 0, len(resp.GetContexts().GetContexts()))
	for _, c := range resp.GetContexts().GetContexts() {
		entry := map[string]any{
			"text":       c.GetText(),
			"source_uri": c.GetSourceUri(),
		}
		if c.Score != nil {
			entry["distance"] = c.GetScore()
		}
		contexts = append(contexts, entry)
	}

	return toolcall.Result(call, map[string]any{
		"status":   "success",
		"contexts": contexts,
		"query":    query,
	})
}
