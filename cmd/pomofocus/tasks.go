package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kazz187/pomofocus/internal/identity"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

func (a *cliApp) setup(ctx context.Context, name, email string) error {
	id, err := a.identity.Save(identity.Identity{Email: email, Name: name})
	if err != nil {
		return err
	}
	if _, err := a.lifecycle.EnsureUser(ctx, id.Email, id.Name); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	a.successf("Signed in as %s <%s>", id.Name, id.Email)
	return nil
}

func (a *cliApp) logout() error {
	if err := a.identity.Clear(); err != nil {
		return err
	}
	a.successf("Signed out")
	return nil
}

func (a *cliApp) whoami() error {
	id, err := a.me()
	if err != nil {
		return err
	}
	a.printf("%s <%s>\n", id.Name, id.Email)
	return nil
}

func (a *cliApp) add(ctx context.Context, title, description string, pomodoros int) error {
	id, err := a.me()
	if err != nil {
		return err
	}
	t, err := a.lifecycle.CreateTask(ctx, title, description, pomodoros, id.Email)
	if err != nil {
		return errors.New(cerr.Message(err))
	}
	a.successf("Added %q (%s)", t.Title, shortID(t.ID))
	return nil
}

func (a *cliApp) list(ctx context.Context, pendingOnly, fullIDs bool) error {
	id, err := a.me()
	if err != nil {
		return err
	}
	tasks, err := a.lifecycle.ListTasks(ctx, id.Email)
	if err != nil {
		return err
	}
	shown, done := 0, 0
	for _, t := range tasks {
		if t.Completed {
			done++
			if pendingOnly {
				continue
			}
		}
		a.printTask(t, fullIDs)
		shown++
	}
	if shown == 0 {
		dimColor.Fprintln(a.out, `No tasks yet. Add one with "pomofocus add TITLE".`)
		return nil
	}
	dimColor.Fprintf(a.out, "%d/%d completed\n", done, len(tasks))
	return nil
}

func (a *cliApp) printTask(t *task.Task, fullID bool) {
	ref := shortID(t.ID)
	if fullID {
		ref = t.ID
	}
	box := "[ ]"
	if t.Completed {
		box = successColor.Sprint("[x]")
	}
	a.printf("%s %s  %s\n", box, dimColor.Sprint(ref), t.Title)
	if t.Description != "" {
		dimColor.Fprintf(a.out, "      %s\n", t.Description)
	}
	dimColor.Fprintf(a.out, "      %d/%d pomodoros, %s\n",
		t.CompletedPomodoros, t.EstimatedPomodoros, t.EstimatedDuration())
}

// editFlags reads the edit command's flags; unset flags leave fields alone.
func editFlags() task.Patch {
	var p task.Patch
	if editTitleSet {
		p.Title = editTitle
	}
	if editDescriptionSet {
		p.Description = editDescription
	}
	if editPomodorosSet {
		p.EstimatedPomodoros = editPomodoros
	}
	return p
}

func (a *cliApp) edit(ctx context.Context, ref string, patch task.Patch) error {
	if patch.IsEmpty() {
		return errors.New("nothing to change; pass --title, --description or --pomodoros")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return errors.New("title must not be empty")
	}
	t, err := a.resolveTask(ctx, ref)
	if err != nil {
		return err
	}
	t, err = a.lifecycle.UpdateTask(ctx, t.ID, patch)
	if err != nil {
		return errors.New(cerr.Message(err))
	}
	a.successf("Updated %q", t.Title)
	return nil
}

func (a *cliApp) setCompleted(ctx context.Context, ref string, completed bool) error {
	t, err := a.resolveTask(ctx, ref)
	if err != nil {
		return err
	}
	t, err = a.lifecycle.ToggleComplete(ctx, t.ID, completed)
	if err != nil {
		return errors.New(cerr.Message(err))
	}
	if completed {
		a.successf("Completed %q", t.Title)
	} else {
		a.successf("Reopened %q", t.Title)
	}
	return nil
}

func (a *cliApp) delete(ctx context.Context, ref string) error {
	t, err := a.resolveTask(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.lifecycle.DeleteTask(ctx, t.ID); err != nil {
		return errors.New(cerr.Message(err))
	}
	a.successf("Deleted %q", t.Title)
	return nil
}

// resolveTask finds one of the signed-in user's tasks by full id or by a
// unique prefix or suffix of it.
func (a *cliApp) resolveTask(ctx context.Context, ref string) (*task.Task, error) {
	id, err := a.me()
	if err != nil {
		return nil, err
	}
	tasks, err := a.lifecycle.ListTasks(ctx, id.Email)
	if err != nil {
		return nil, err
	}
	return matchTask(tasks, ref)
}

func matchTask(tasks []*task.Task, ref string) (*task.Task, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return nil, errors.New("task id is required")
	}
	var found *task.Task
	for _, t := range tasks {
		id := strings.ToUpper(t.ID)
		if id == ref {
			return t, nil
		}
		if strings.HasPrefix(id, ref) || strings.HasSuffix(id, ref) {
			if found != nil {
				return nil, fmt.Errorf("task id %q is ambiguous", ref)
			}
			found = t
		}
	}
	if found == nil {
		return nil, fmt.Errorf("task %q not found", ref)
	}
	return found, nil
}

const shortIDLen = 8

// shortID shows the tail of a ulid; the head is a timestamp and repeats
// across tasks created close together.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[len(id)-shortIDLen:]
}
