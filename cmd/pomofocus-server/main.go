package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kazz187/pomofocus/internal/agent"
	"github.com/kazz187/pomofocus/internal/chat"
	"github.com/kazz187/pomofocus/internal/config"
	"github.com/kazz187/pomofocus/internal/datastore"
	"github.com/kazz187/pomofocus/internal/enhance"
	"github.com/kazz187/pomofocus/internal/event"
	"github.com/kazz187/pomofocus/internal/eventbus"
	"github.com/kazz187/pomofocus/internal/lifecycle"
	"github.com/kazz187/pomofocus/internal/llm"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/pkg/clog"
	"github.com/kazz187/pomofocus/pkg/panicerr"

	server "github.com/kazz187/pomofocus/internal"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, err := datastore.Open(ctx, &env.StoreEnv)
	if err != nil {
		slog.Error("failed to open store", "type", env.StoreEnv.Type, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	bus := eventbus.New()
	lc := lifecycle.NewManager(store.Users, store.Tasks, bus)

	if env.OpenAIEnv.APIKey == "" {
		slog.Warn("POMOFOCUS_OPENAI_API_KEY is not set; chat and enhance requests will fail")
	}
	completer := llm.NewOpenAI(&env.OpenAIEnv)

	srv := server.NewServer(
		env,
		agent.NewServer(&env.AgentEnv, lc),
		chat.NewServer(chat.NewService(completer)),
		enhance.NewServer(enhance.NewService(completer, lc)),
		task.NewServer(store.Tasks),
		event.NewServer(bus),
	)

	serve := panicerr.SafeContext(srv.ListenAndServe)
	go func() {
		if err := serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()
	slog.Info("server started", "host", env.HTTPHost, "port", env.HTTPPort, "store", env.StoreEnv.Type)

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
