package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
)

var (
	app = kingpin.New("pomofocus", "Pomodoro task tracker with an AI assistant")

	setupCmd   = app.Command("setup", "Sign in with your name and email")
	setupName  = setupCmd.Flag("name", "Display name").Short('n').Required().String()
	setupEmail = setupCmd.Flag("email", "Email address").Short('e').Required().String()

	logoutCmd = app.Command("logout", "Forget the signed-in user")
	whoamiCmd = app.Command("whoami", "Show the signed-in user")

	addCmd         = app.Command("add", "Add a task")
	addTitle       = addCmd.Arg("title", "Task title").Required().String()
	addDescription = addCmd.Flag("description", "Task description").Short('d').String()
	addPomodoros   = addCmd.Flag("pomodoros", "Estimated 25-minute sessions").Short('p').Default("1").Int()

	listCmd     = app.Command("list", "List your tasks, newest first").Alias("ls")
	listPending = listCmd.Flag("pending", "Hide completed tasks").Bool()
	listShowIDs = listCmd.Flag("ids", "Show full task ids").Bool()

	editCmd         = app.Command("edit", "Edit a task")
	editID          = editCmd.Arg("id", "Task id or unique prefix").Required().String()
	editTitle       = editCmd.Flag("title", "New title").Short('t').IsSetByUser(&editTitleSet).String()
	editDescription = editCmd.Flag("description", "New description").Short('d').IsSetByUser(&editDescriptionSet).String()
	editPomodoros   = editCmd.Flag("pomodoros", "New estimate").Short('p').IsSetByUser(&editPomodorosSet).Int()

	editTitleSet, editDescriptionSet, editPomodorosSet bool

	doneCmd   = app.Command("done", "Mark a task as completed")
	doneID    = doneCmd.Arg("id", "Task id or unique prefix").Required().String()
	undoneCmd = app.Command("undone", "Mark a task as not completed")
	undoneID  = undoneCmd.Arg("id", "Task id or unique prefix").Required().String()

	deleteCmd = app.Command("delete", "Delete a task").Alias("rm")
	deleteID  = deleteCmd.Arg("id", "Task id or unique prefix").Required().String()

	enhanceCmd = app.Command("enhance", "Let the assistant rewrite a task and save the result")
	enhanceID  = enhanceCmd.Arg("id", "Task id or unique prefix").Required().String()

	chatCmd = app.Command("chat", `Talk to the assistant; say "add todo" to create a task step by step`)
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	if err := run(ctx, a, command); err != nil {
		a.errorf("%v", err)
		a.close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *cliApp, command string) error {
	switch command {
	case setupCmd.FullCommand():
		return a.setup(ctx, *setupName, *setupEmail)
	case logoutCmd.FullCommand():
		return a.logout()
	case whoamiCmd.FullCommand():
		return a.whoami()
	case addCmd.FullCommand():
		return a.add(ctx, *addTitle, *addDescription, *addPomodoros)
	case listCmd.FullCommand():
		return a.list(ctx, *listPending, *listShowIDs)
	case editCmd.FullCommand():
		return a.edit(ctx, *editID, editFlags())
	case doneCmd.FullCommand():
		return a.setCompleted(ctx, *doneID, true)
	case undoneCmd.FullCommand():
		return a.setCompleted(ctx, *undoneID, false)
	case deleteCmd.FullCommand():
		return a.delete(ctx, *deleteID)
	case enhanceCmd.FullCommand():
		return a.enhance(ctx, *enhanceID)
	case chatCmd.FullCommand():
		return a.chat(ctx, os.Stdin)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
