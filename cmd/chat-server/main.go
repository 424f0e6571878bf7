/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// chat-server serves the browser chat surface for the portfolio agent. It
// proxies conversational turns to the deployed Agent Engine resource and
// hands back reduced responses with citations.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/mohitagr18/portfolio-agent/config"
	"github.com/mohitagr18/portfolio-agent/engine"
	"github.com/sethvargo/go-envconfig"
)

//go:embed index.html
var chatPage []byte

type serverConfig struct {
	Port int `env:"PORT,default=8080"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var srvCfg serverConfig
	if err := envconfig.Process(ctx, &srvCfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}
	if cfg.AgentResource == "" {
		clog.FatalContextf(ctx, "AGENT_RESOURCE_NAME is required")
	}

	client, err := engine.New(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "creating engine client: %v", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", srvCfg.Port),
		Handler:           newMux(client, chatPage),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			clog.ErrorContextf(ctx, "shutting down: %v", err)
		}
	}()

	clog.InfoContextf(ctx, "Serving chat for %s on port %d", cfg.AgentResource, srvCfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}
}
