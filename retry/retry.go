/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package retry provides exponential backoff for transient Vertex AI and
// GitHub API failures.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config controls backoff behavior.
type Config struct {
	// MaxRetries is the number of retry attempts after the initial call.
	// 0 disables retries.
	MaxRetries int
	// BaseBackoff is the initial backoff duration.
	BaseBackoff time.Duration
	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration
	// MaxJitter is the upper bound on random jitter added to each backoff.
	MaxJitter time.Duration
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 || c.MaxBackoff < 0 || c.MaxJitter < 0 {
		return errors.New("backoff durations cannot be negative")
	}
	return nil
}

// DefaultConfig returns a configuration tuned for quota-style rate limits,
// which need longer recovery windows than ordinary transient errors.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  60 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// Do runs fn with exponential backoff, retrying only errors the isRetryable
// classifier accepts. The operation name is used for logging and error
// wrapping.
func Do[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if !isRetryable(lastErr) {
			return result, lastErr
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		backoff := min(cfg.BaseBackoff<<attempt, cfg.MaxBackoff)
		backoff += jitter(cfg.MaxJitter)

		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", backoff).
			With("error", lastErr.Error()).
			Warn("Transient error, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}

// jitter returns a random duration in [0, max) to avoid thundering herds.
func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}

// Transient classifies rate limit, quota exhaustion, and transient server
// errors from Vertex AI as retryable.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"429",
		"503",
		"RESOURCE_EXHAUSTED",
		"Resource exhausted",
		"rate limit",
		"quota exceeded",
		"Overloaded",
		"Internal error",
		"server error",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
