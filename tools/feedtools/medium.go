/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package feedtools implements list_medium_articles, the Medium RSS
// syndication tool.
package feedtools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/mohitagr18/portfolio-agent/config"
	"github.com/mohitagr18/portfolio-agent/toolcall"
	"google.golang.org/genai"
)

// maxArticles bounds how many feed entries the tool reports.
const maxArticles = 10

// rss is the subset of the RSS 2.0 document the tool reads. Medium serves
// namespaced extensions (dc:creator, content:encoded) that we ignore.
type rss struct {
	Channel struct {
		Title string `xml:"title"`
		Items []item `xml:"item"`
	} `xml:"channel"`
}

type item struct {
	Title      string   `xml:"title"`
	Link       string   `xml:"link"`
	PubDate    string   `xml:"pubDate"`
	Categories []string `xml:"category"`
}

// Tools holds the feed tool implementation.
type Tools struct {
	cfg    *config.Config
	client *http.Client
}

// New creates the feed tools with a default HTTP client.
func New(cfg *config.Config) *Tools {
	return NewWithClient(cfg, &http.Client{Timeout: 30 * time.Second})
}

// NewWithClient creates the tools around an existing HTTP client. Used by
// tests.
func NewWithClient(cfg *config.Config, client *http.Client) *Tools {
	return &Tools{cfg: cfg, client: client}
}

// Metadata returns the tool declaration and handler.
func (t *Tools) Metadata() map[string]toolcall.Metadata {
	return map[string]toolcall.Metadata{
		"list_medium_articles": {
			Definition: &genai.FunctionDeclaration{
				Name:        "list_medium_articles",
				Description: "List recently published Medium articles with titles, links, publication dates, and topics.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{},
				},
			},
			Handler: t.listArticles,
		},
	}
}

func (t *Tools) listArticles(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	feedURL := t.cfg.FeedURL()
	clog.FromContext(ctx).With("feed", feedURL).Info("Fetching Medium feed")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return toolcall.Text(call, fmt.Sprintf("Error building feed request: %s", err))
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return toolcall.Text(call, fmt.Sprintf("Error fetching Medium feed: %s", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return toolcall.Text(call, fmt.Sprintf("Error fetching Medium feed: HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return toolcall.Text(call, fmt.Sprintf("Error reading Medium feed: %s", err))
	}

	var doc rss
	if err := xml.Unmarshal(body, &doc); err != nil {
		return toolcall.Text(call, fmt.Sprintf("Error parsing Medium feed: %s", err))
	}

	items := doc.Channel.Items
	if len(items) == 0 {
		return toolcall.Text(call, "No articles found in the Medium feed.")
	}
	if len(items) > maxArticles {
		items = items[:maxArticles]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d recent Medium articles:\n\n", len(items))
	for i, it := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, it.Title)
		fmt.Fprintf(&sb, "   Link: %s\n", it.Link)
		if it.PubDate != "" {
			fmt.Fprintf(&sb, "   Published: %s\n", it.PubDate)
		}
		if len(it.Categories) > 0 {
			fmt.Fprintf(&sb, "   Topics: %s\n", strings.Join(it.Categories, ", "))
		}
		sb.WriteString("\n")
	}
	return toolcall.Text(call, strings.TrimRight(sb.String(), "\n"))
}
