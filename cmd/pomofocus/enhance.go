package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kazz187/pomofocus/internal/task"
)

func (a *cliApp) enhance(ctx context.Context, ref string) error {
	me, err := a.me()
	if err != nil {
		return err
	}
	before, err := a.resolveTask(ctx, ref)
	if err != nil {
		return err
	}
	dimColor.Fprintln(a.out, "Asking the assistant...")
	enhanced, err := a.client.EnhanceTask(ctx, before.ID, before.Title, before.Description, me.Email)
	if err != nil {
		return err
	}

	after := *before
	after.Title = enhanced.Title
	after.Description = enhanced.Description
	after.EstimatedPomodoros = enhanced.EstimatedPomodoros

	diff, err := taskDiff(before, &after)
	if err != nil {
		return err
	}
	a.printDiff(diff)
	if enhanced.Reasoning != "" {
		a.printf("\n%s %s\n", botColor.Sprint("Why:"), enhanced.Reasoning)
	}
	a.successf("Saved enhanced task %s", shortID(before.ID))
	return nil
}

func taskLines(t *task.Task) []string {
	return difflib.SplitLines(fmt.Sprintf("title: %s\ndescription: %s\npomodoros: %d\n",
		t.Title, t.Description, t.EstimatedPomodoros))
}

// taskDiff renders the user-visible fields of before and after as a unified
// diff. It is empty when nothing changed.
func taskDiff(before, after *task.Task) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        taskLines(before),
		B:        taskLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	})
}

func (a *cliApp) printDiff(diff string) {
	if diff == "" {
		dimColor.Fprintln(a.out, "The assistant kept the task as it was.")
		return
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			dimColor.Fprint(a.out, line)
		case strings.HasPrefix(line, "+"):
			successColor.Fprint(a.out, line)
		case strings.HasPrefix(line, "-"):
			errorColor.Fprint(a.out, line)
		default:
			a.printf("%s", line)
		}
	}
}
