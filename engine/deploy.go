/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/chainguard-dev/clog"
)

// pollInterval is how often a pending deployment operation is checked.
const pollInterval = 10 * time.Second

// AgentSpec describes an agent deployment.
type AgentSpec struct {
	DisplayName string
	Description string
	// Env is forwarded to the deployed agent's runtime environment
	// (RAG corpus, GitHub credentials).
	Env map[string]string
}

// Agent is a deployed reasoning engine resource.
type Agent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
}

// operation is the long-running operation envelope returned by mutations.
type operation struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Response json.RawMessage `json:"response"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateAgent deploys an agent and blocks until the deployment operation
// completes, returning the new resource name.
func (c *Client) CreateAgent(ctx context.Context, spec AgentSpec) (string, error) {
	if c.cfg.StagingBucket == "" {
		return "", fmt.Errorf("GOOGLE_CLOUD_STAGING_BUCKET is required to deploy")
	}

	var env []map[string]string
	for k, v := range spec.Env {
		env = append(env, map[string]string{"name": k, "value": v})
	}
	payload := map[string]any{
		"displayName": spec.DisplayName,
		"description": spec.Description,
		"spec": map[string]any{
			"deploymentSpec": map[string]any{"env": env},
		},
	}

	clog.FromContext(ctx).With("display_name", spec.DisplayName).Info("Deploying agent")

	body, err := c.post(ctx, c.collectionURL(), payload)
	if err != nil {
		return "", fmt.Errorf("creating agent: %w", err)
	}

	var op operation
	if err := json.Unmarshal(body, &op); err != nil {
		return "", fmt.Errorf("decoding operation: %w", err)
	}
	op, err = c.waitOperation(ctx, op)
	if err != nil {
		return "", err
	}

	var agent Agent
	if err := json.Unmarshal(op.Response, &agent); err != nil {
		return "", fmt.Errorf("decoding deployed agent: %w", err)
	}
	return agent.Name, nil
}

// DeleteAgent removes a deployed agent, including any child resources.
func (c *Client) DeleteAgent(ctx context.Context, name string) error {
	clog.FromContext(ctx).With("agent", name).Info("Deleting agent")

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/%s?force=true", c.baseURL, name), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("deleting agent: %w", err)
	}

	var op operation
	if err := json.Unmarshal(body, &op); err != nil {
		return fmt.Errorf("decoding operation: %w", err)
	}
	if _, err := c.waitOperation(ctx, op); err != nil {
		return err
	}
	return nil
}

// ListAgents returns every agent deployed in the configured project and
// location.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	pageToken := ""
	for {
		u := c.collectionURL()
		if pageToken != "" {
			u += "?pageToken=" + url.QueryEscape(pageToken)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		body, err := c.do(req)
		if err != nil {
			return nil, fmt.Errorf("listing agents: %w", err)
		}

		var page struct {
			ReasoningEngines []Agent `json:"reasoningEngines"`
			NextPageToken    string  `json:"nextPageToken"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding agent list: %w", err)
		}
		agents = append(agents, page.ReasoningEngines...)
		if page.NextPageToken == "" {
			return agents, nil
		}
		pageToken = page.NextPageToken
	}
}

// waitOperation polls a long-running operation until it completes.
func (c *Client) waitOperation(ctx context.Context, op operation) (operation, error) {
	for !op.Done {
		select {
		case <-ctx.Done():
			return op, ctx.Err()
		case <-time.After(pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/%s", c.baseURL, op.Name), nil)
		if err != nil {
			return op, fmt.Errorf("building request: %w", err)
		}
		body, err := c.do(req)
		if err != nil {
			return op, fmt.Errorf("polling operation: %w", err)
		}
		if err := json.Unmarshal(body, &op); err != nil {
			return op, fmt.Errorf("decoding operation: %w", err)
		}
	}
	if op.Error != nil {
		return op, fmt.Errorf("operation failed: %s", op.Error.Message)
	}
	return op, nil
}

// collectionURL is the reasoningEngines collection for the configured
// project and location.
func (c *Client) collectionURL() string {
	return fmt.Sprintf("%s/projects/%s/locations/%s/reasoningEngines",
		c.baseURL, c.cfg.Project, c.cfg.Location)
}
