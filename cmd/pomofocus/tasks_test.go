package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/pomofocus/internal/task"
)

func TestMatchTask(t *testing.T) {
	tasks := []*task.Task{
		{ID: "01J9ZQ3K7M0000000000AAAA11", Title: "one"},
		{ID: "01J9ZQ3K7M0000000000BBBB22", Title: "two"},
	}

	got, err := matchTask(tasks, "01J9ZQ3K7M0000000000AAAA11")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Title)

	got, err = matchTask(tasks, "bbbb22")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Title)

	_, err = matchTask(tasks, "01J9ZQ")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = matchTask(tasks, "zzzz")
	assert.ErrorContains(t, err, "not found")

	_, err = matchTask(tasks, "  ")
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "AAAA11", shortID("AAAA11"))
	assert.Equal(t, "0000AA11", shortID("01J9ZQ3K7M0000000000AA11"))
}

func TestTaskDiff(t *testing.T) {
	before := &task.Task{Title: "write", Description: "", EstimatedPomodoros: 1}
	after := &task.Task{Title: "Write the release notes", Description: "", EstimatedPomodoros: 2}

	diff, err := taskDiff(before, after)
	require.NoError(t, err)
	assert.Contains(t, diff, "-title: write\n")
	assert.Contains(t, diff, "+title: Write the release notes\n")
	assert.Contains(t, diff, "+pomodoros: 2\n")
	assert.True(t, strings.HasPrefix(diff, "--- before\n+++ after\n"))

	diff, err = taskDiff(before, before)
	require.NoError(t, err)
	assert.Empty(t, diff)
}
