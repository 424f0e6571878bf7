/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package githubtools implements the agent's GitHub tools: repository
// listing, file and directory reads, and repository metadata.
//
// Results are shaped strings rather than structured payloads: the model
// consumes them as-is, and error conditions are folded into readable text so
// a failed lookup never aborts the conversation.
package githubtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"github.com/mohitagr18/portfolio-agent/config"
	"github.com/mohitagr18/portfolio-agent/toolcall"
	"google.golang.org/genai"
)

// apiTimeout bounds each GitHub API call.
const apiTimeout = 30 * time.Second

// maxErrorMessage caps the API error text echoed back to the model.
const maxErrorMessage = 200

// Tools holds the GitHub tool implementations.
type Tools struct {
	cfg    *config.Config
	client *github.Client
}

// New creates the GitHub tools with a client authenticated by the configured
// token. Without a token, requests are unauthenticated and limited to public
// repositories.
func New(cfg *config.Config) *Tools {
	client := github.NewClient(&http.Client{Timeout: apiTimeout})
	if cfg.GitHubToken != "" {
		client = client.WithAuthToken(cfg.GitHubToken)
	}
	return &Tools{cfg: cfg, client: client}
}

// NewWithClient creates the tools around an existing client. Used by tests
// to point at a local API server.
func NewWithClient(cfg *config.Config, client *github.Client) *Tools {
	return &Tools{cfg: cfg, client: client}
}

// Metadata returns the tool declarations and handlers, keyed by tool name.
func (t *Tools) Metadata() map[string]toolcall.Metadata {
	return map[string]toolcall.Metadata{
		"list_repositories": {
			Definition: &genai.FunctionDeclaration{
				Name:        "list_repositories",
				Description: "List all public repositories for a GitHub user.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"username": {
							Type:        genai.TypeString,
							Description: "GitHub username (defaults to the portfolio owner)",
						},
					},
				},
			},
			Handler: t.listRepositories,
		},
		"get_file_contents": {
			Definition: &genai.FunctionDeclaration{
				Name:        "get_file_contents",
				Description: "Get contents of a file from a GitHub repository, or list a directory. Use '' or '/' as path for the root directory listing.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"owner": {Type: genai.TypeString, Description: "Repository owner username"},
						"repo":  {Type: genai.TypeString, Description: "Repository name"},
						"path":  {Type: genai.TypeString, Description: "File path in the repository"},
					},
					Required: []string{"owner", "repo", "path"},
				},
			},
			Handler: t.getFileContents,
		},
		"get_repository_info": {
			Definition: &genai.FunctionDeclaration{
				Name:        "get_repository_info",
				Description: "Get detailed information about a GitHub repository.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"owner": {Type: genai.TypeString, Description: "Repository owner username"},
						"repo":  {Type: genai.TypeString, Description: "Repository name"},
					},
					Required: []string{"owner", "repo"},
				},
			},
			Handler: t.getRepositoryInfo,
		},
	}
}

func (t *Tools) listRepositories(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	username, errResp := toolcall.OptionalParam(call, "username", "")
	if errResp != nil {
		return errResp
	}
	if username == "" {
		username = t.cfg.GitHubUsername
	}

	clog.FromContext(ctx).With("username", username).Info("Listing repositories")

	repos, _, err := t.client.Repositories.ListByUser(ctx, username, &github.RepositoryListByUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return toolcall.Text(call, apiErrorJSON(err))
	}

	body, err := json.Marshal(repos)
	if err != nil {
		return toolcall.Error(call, "encoding repository list: %v", err)
	}
	return toolcall.Text(call, string(body))
}

func (t *Tools) getFileContents(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	owner, errResp := toolcall.Param[string](call, "owner")
	if errResp != nil {
		return errResp
	}
	repo, errResp := toolcall.Param[string](call, "repo")
	if errResp != nil {
		return errResp
	}
	path, errResp := toolcall.Param[string](call, "path")
	if errResp != nil {
		return errResp
	}
	path = strings.Trim(path, "/")

	clog.FromContext(ctx).With("owner", owner).With("repo", repo).With("path", path).
		Info("Fetching file contents")

	file, dir, _, err := t.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil {
			if ghErr.Response.StatusCode == http.StatusNotFound {
				return toolcall.Text(call, fmt.Sprintf(
					"File not found: %s in %s/%s. The file may not exist or the repository may be private.",
					path, owner, repo))
			}
			return toolcall.Text(call, fmt.Sprintf("Error accessing file: HTTP %d. %s",
				ghErr.Response.StatusCode, clip(ghErr.Message, maxErrorMessage)))
		}
		return toolcall.Text(call, fmt.Sprintf("Error: %s", err))
	}

	// Directory listing.
	if dir != nil {
		display := path
		if display == "" {
			display = "root"
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Directory contents of %s:\n", display)
		for _, item := range dir {
			fmt.Fprintf(&sb, "- %s (%s)\n", item.GetName(), item.GetType())
		}
		return toolcall.Text(call, strings.TrimRight(sb.String(), "\n"))
	}

	if file == nil {
		return toolcall.Text(call, fmt.Sprintf("File not found: %s in %s/%s. The file may not exist or the repository may be private.", path, owner, repo))
	}

	if file.GetSize() == 0 {
		return toolcall.Text(call, fmt.Sprintf("File exists but is empty: %s", path))
	}

	content, err := file.GetContent()
	if err != nil {
		return toolcall.Text(call, fmt.Sprintf("Error decoding file content: %s", err))
	}
	if content == "" {
		// No inline content (e.g. a submodule entry); fall back to metadata.
		meta, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return toolcall.Error(call, "encoding file metadata: %v", err)
		}
		return toolcall.Text(call, string(meta))
	}
	return toolcall.Text(call, content)
}

func (t *Tools) getRepositoryInfo(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	owner, errResp := toolcall.Param[string](call, "owner")
	if errResp != nil {
		return errResp
	}
	repo, errResp := toolcall.Param[string](call, "repo")
	if errResp != nil {
		return errResp
	}

	clog.FromContext(ctx).With("owner", owner).With("repo", repo).Info("Fetching repository info")

	repository, _, err := t.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return toolcall.Text(call, apiErrorJSON(err))
	}
	body, err := json.Marshal(repository)
	if err != nil {
		return toolcall.Error(call, "encoding repository: %v", err)
	}
	return toolcall.Text(call, string(body))
}

// apiErrorJSON shapes an API failure as the JSON error string the prompt
// teaches the model to expect.
func apiErrorJSON(err error) string {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		b, _ := json.Marshal(map[string]string{
			"error":   fmt.Sprintf("HTTP %d", ghErr.Response.StatusCode),
			"message": clip(ghErr.Message, maxErrorMessage),
		})
		return string(b)
	}
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
