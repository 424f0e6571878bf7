/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// agentctl manages and talks to the portfolio agent: deployment of the
// Agent Engine resource, one-shot queries, and an interactive chat loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/charmbracelet/lipgloss"
	"github.com/mohitagr18/portfolio-agent/agent"
	"github.com/mohitagr18/portfolio-agent/config"
	"github.com/mohitagr18/portfolio-agent/engine"
	"github.com/mohitagr18/portfolio-agent/toolcall"
	"github.com/mohitagr18/portfolio-agent/tools/feedtools"
	"github.com/mohitagr18/portfolio-agent/tools/githubtools"
	"github.com/mohitagr18/portfolio-agent/tools/ragtools"
	"github.com/urfave/cli/v2"
)

const userID = "cli_user"

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	responseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	citationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

// querier is the surface shared by the remote client and the local runtime.
type querier interface {
	Query(ctx context.Context, userID, sessionID, message string) engine.QueryResult
}

func main() {
	app := &cli.App{
		Name:  "agentctl",
		Usage: "Manage and chat with the portfolio agent",
		Commands: []*cli.Command{
			{
				Name:   "create-agent",
				Usage:  "Deploy the portfolio agent to Agent Engine",
				Action: createAgent,
			},
			{
				Name:      "delete-agent",
				Usage:     "Delete a deployed agent",
				ArgsUsage: "<resource_name>",
				Action:    deleteAgent,
			},
			{
				Name:   "list-agents",
				Usage:  "List deployed agents",
				Action: listAgents,
			},
			{
				Name:   "create-session",
				Usage:  "Create a conversation session and print its id",
				Action: createSession,
			},
			{
				Name:      "send-message",
				Usage:     "Send one message and print the reduced response",
				ArgsUsage: "<message>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session id to continue; a new session is created when omitted",
					},
				},
				Action: sendMessage,
			},
			{
				Name:  "chat",
				Usage: "Interactive chat with the agent",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "local",
						Usage: "Run the agent in-process instead of calling the deployed resource",
					},
				},
				Action: chat,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		clog.FatalContextf(context.Background(), "%v", err)
	}
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateCloud(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createAgent(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	client, err := engine.New(ctx, cfg)
	if err != nil {
		return err
	}

	// Forward the tool credentials the deployed agent needs at runtime.
	env := map[string]string{}
	if cfg.RAGCorpus != "" {
		env["RAG_CORPUS"] = cfg.RAGCorpus
	}
	if cfg.GitHubUsername != "" {
		env["GITHUB_USERNAME"] = cfg.GitHubUsername
	}
	if cfg.GitHubToken != "" {
		env["GITHUB_TOKEN"] = cfg.GitHubToken
	}

	name, err := client.CreateAgent(ctx, engine.AgentSpec{
		DisplayName: "portfolio_multi_tool_agent",
		Description: "Portfolio assistant with RAG and GitHub access",
		Env:         env,
	})
	if err != nil {
		return err
	}

	fmt.Println("Deployment successful.")
	fmt.Printf("Resource name: %s\n", name)
	fmt.Printf("Set AGENT_RESOURCE_NAME=%s to query it.\n", name)
	return nil
}

func deleteAgent(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("delete-agent requires a resource name")
	}
	cfg, err := loadConfig(c.Context)
	if err != nil {
		return err
	}
	client, err := engine.New(c.Context, cfg)
	if err != nil {
		return err
	}
	if err := client.DeleteAgent(c.Context, name); err != nil {
		return err
	}
	fmt.Printf("Agent deleted: %s\n", name)
	return nil
}

func listAgents(c *cli.Context) error {
	cfg, err := loadConfig(c.Context)
	if err != nil {
		return err
	}
	client, err := engine.New(c.Context, cfg)
	if err != nil {
		return err
	}
	agents, err := client.ListAgents(c.Context)
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		fmt.Printf("No agents deployed in %s/%s.\n", cfg.Project, cfg.Location)
		return nil
	}
	for _, a := range agents {
		fmt.Printf("Name: %s\n", a.DisplayName)
		fmt.Printf("Resource: %s\n\n", a.Name)
	}
	return nil
}

func createSession(c *cli.Context) error {
	cfg, err := loadConfig(c.Context)
	if err != nil {
		return err
	}
	client, err := engine.New(c.Context, cfg)
	if err != nil {
		return err
	}
	id, err := client.CreateSession(c.Context, userID)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func sendMessage(c *cli.Context) error {
	message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if message == "" {
		return fmt.Errorf("send-message requires a message")
	}
	cfg, err := loadConfig(c.Context)
	if err != nil {
		return err
	}
	client, err := engine.New(c.Context, cfg)
	if err != nil {
		return err
	}

	result := client.Query(c.Context, userID, c.String("session"), message)
	printResult(result)
	return nil
}

func chat(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	var q querier
	if c.Bool("local") {
		runtime, err := localRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		q = runtime
		fmt.Println(statusStyle.Render("Running the agent locally with model " + cfg.Model))
	} else {
		client, err := engine.New(ctx, cfg)
		if err != nil {
			return err
		}
		q = client
		fmt.Println(statusStyle.Render("Connected to " + cfg.AgentResource))
	}
	fmt.Println(statusStyle.Render(`Type "exit" to quit.`))

	sessionID := ""
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("You: "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		result := q.Query(ctx, userID, sessionID, message)
		sessionID = result.SessionID
		printResult(result)
	}
}

// localRuntime assembles the in-process agent with every tool registered.
func localRuntime(ctx context.Context, cfg *config.Config) (*agent.Runtime, error) {
	rag, err := ragtools.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tools := map[string]toolcall.Metadata{}
	for _, set := range []map[string]toolcall.Metadata{
		githubtools.New(cfg).Metadata(),
		rag.Metadata(),
		feedtools.New(cfg).Metadata(),
	} {
		for name, meta := range set {
			tools[name] = meta
		}
	}
	return agent.New(ctx, cfg, tools)
}

func printResult(result engine.QueryResult) {
	for _, use := range result.Tools {
		if !use.Completed {
			continue
		}
		line := fmt.Sprintf("[tool] %s", use.Tool)
		if use.Retrieved > 0 {
			line = fmt.Sprintf("%s (%d passages)", line, use.Retrieved)
		}
		fmt.Println(statusStyle.Render(line))
	}

	fmt.Println(responseStyle.Render(result.ResponseText))

	if len(result.Citations) > 0 {
		fmt.Println(citationStyle.Render("Sources:"))
		for i, cite := range result.Citations {
			fmt.Println(citationStyle.Render(fmt.Sprintf("  %d. %s: %s", i+1, cite.SourceURI, cite.Text)))
		}
	}
	fmt.Println()
}
