package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/kazz187/pomofocus/internal/client"
	"github.com/kazz187/pomofocus/internal/config"
	"github.com/kazz187/pomofocus/internal/datastore"
	"github.com/kazz187/pomofocus/internal/identity"
	"github.com/kazz187/pomofocus/internal/lifecycle"
	"github.com/kazz187/pomofocus/pkg/clog"
)

// cliApp is the state shared by every command: where tasks live, who is
// signed in and where output goes. Mutations only go through lifecycle.
type cliApp struct {
	env       *config.Env
	store     *datastore.Store
	lifecycle *lifecycle.Manager
	identity  *identity.Store
	client    *client.Client

	out, errOut io.Writer
	closed      bool
}

func newApp(ctx context.Context) (*cliApp, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	level := env.SlogLevel()
	if level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(
		clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level)),
	)))

	idPath, err := env.IdentityPath()
	if err != nil {
		return nil, err
	}
	store, err := datastore.Open(ctx, &env.StoreEnv)
	if err != nil {
		return nil, err
	}

	return &cliApp{
		env:       env,
		store:     store,
		lifecycle: lifecycle.NewManager(store.Users, store.Tasks, nil),
		identity:  identity.NewStore(idPath),
		client:    client.New(env.ServerURL, env.BaseEnv.APIKey),
		out:       color.Output,
		errOut:    color.Error,
	}, nil
}

func (a *cliApp) close() {
	if a.closed {
		return
	}
	a.closed = true
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}

// me returns the signed-in user or a hint to run setup.
func (a *cliApp) me() (*identity.Identity, error) {
	id, err := a.identity.Load()
	if errors.Is(err, identity.ErrNotSignedIn) {
		return nil, errors.New(`not signed in; run "pomofocus setup --name NAME --email EMAIL"`)
	}
	return id, err
}

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
	userColor    = color.New(color.FgCyan, color.Bold)
	botColor     = color.New(color.FgMagenta, color.Bold)
)

func (a *cliApp) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *cliApp) successf(format string, args ...any) {
	successColor.Fprintf(a.out, format+"\n", args...)
}

func (a *cliApp) errorf(format string, args ...any) {
	errorColor.Fprintf(a.errOut, "error: "+format+"\n", args...)
}
