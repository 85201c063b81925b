// Command pomofocus-mcp exposes task management to MCP clients over stdio.
// Stdout carries the protocol, so logs go to stderr.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kazz187/pomofocus/internal/config"
	"github.com/kazz187/pomofocus/internal/datastore"
	"github.com/kazz187/pomofocus/internal/enhance"
	"github.com/kazz187/pomofocus/internal/lifecycle"
	"github.com/kazz187/pomofocus/internal/llm"
	"github.com/kazz187/pomofocus/internal/mcptools"
	"github.com/kazz187/pomofocus/pkg/clog"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pomofocus-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: env.SlogLevel()}),
	)))

	store, err := datastore.Open(context.Background(), &env.StoreEnv)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	lc := lifecycle.NewManager(store.Users, store.Tasks, nil)
	enhancer := enhance.NewService(llm.NewOpenAI(&env.OpenAIEnv), lc)

	return server.ServeStdio(mcptools.NewServer(version, lc, enhancer))
}
