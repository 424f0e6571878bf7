/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package config holds the process-wide configuration for the portfolio agent.
//
// The configuration is processed exactly once at startup (in main) and passed
// by reference to every collaborator. Nothing outside this package reads
// environment variables after startup.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config is the process-wide configuration, populated from the environment.
type Config struct {
	// Project is the Google Cloud project hosting the agent and RAG corpus.
	Project string `env:"GOOGLE_CLOUD_PROJECT"`

	// Location is the Google Cloud region for Vertex AI resources.
	Location string `env:"GOOGLE_CLOUD_LOCATION,default=us-east4"`

	// AgentResource is the full resource name of the deployed agent, e.g.
	// "projects/PROJECT/locations/REGION/reasoningEngines/ID".
	AgentResource string `env:"AGENT_RESOURCE_NAME"`

	// StagingBucket is the GCS bucket used when deploying a new agent.
	StagingBucket string `env:"GOOGLE_CLOUD_STAGING_BUCKET"`

	// RAGCorpus is the Vertex AI RAG corpus resource queried by rag_retrieval.
	RAGCorpus string `env:"RAG_CORPUS"`

	// GitHubUsername is the default user for the GitHub tools.
	GitHubUsername string `env:"GITHUB_USERNAME,default=mohitagr18"`

	// GitHubToken authenticates GitHub API calls. Optional; unauthenticated
	// requests work for public repositories at a lower rate limit.
	GitHubToken string `env:"GITHUB_TOKEN"`

	// MediumFeed is the RSS feed queried by list_medium_articles.
	// When empty it is derived from GitHubUsername.
	MediumFeed string `env:"MEDIUM_FEED_URL"`

	// Model is the Gemini model used by the local agent runtime.
	Model string `env:"MODEL,default=gemini-2.5-flash"`
}

// Load processes the environment into a Config.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	return &cfg, nil
}

// ValidateCloud checks the fields required before any Vertex AI call.
// This fails fast so misconfiguration never surfaces as a network error.
func (c *Config) ValidateCloud() error {
	if c.Project == "" {
		return errors.New("GOOGLE_CLOUD_PROJECT is required")
	}
	if c.Location == "" {
		return errors.New("GOOGLE_CLOUD_LOCATION is required")
	}
	return nil
}

// FeedURL returns the Medium feed URL, deriving it from the GitHub username
// when MEDIUM_FEED_URL is not set.
func (c *Config) FeedURL() string {
	if c.MediumFeed != "" {
		return c.MediumFeed
	}
	return fmt.Sprintf("https://medium.com/feed/@%s", c.GitHubUsername)
}
