package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/pomofocus/internal/llm"
)

type fakeCompleter struct {
	reply string
	err   error
	got   llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.got = req
	return f.reply, f.err
}

func TestIsProductivityRelated(t *testing.T) {
	assert.True(t, IsProductivityRelated("My TODO list is long"))
	assert.True(t, IsProductivityRelated("homework"))
	assert.True(t, IsProductivityRelated("new Project"))
	assert.False(t, IsProductivityRelated("what's the weather"))
}

func TestSuggestsTask(t *testing.T) {
	tests := []struct {
		message, reply string
		want           bool
	}{
		{"improve my task", "Here is an enhanced version", true},
		{"improve my task", "Here is an Enhanced version", false},
		{"improve my task", "I improved the title", true},
		{"improve my task", "Sounds good", false},
		{"how can I sleep better?", "Here is an improved bedtime routine.", true},
		{"how can I sleep better?", "Here is an enhanced bedtime routine.", false},
		{"how can I sleep better?", "An Improved routine", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestsTask(tt.message, tt.reply), "%q / %q", tt.message, tt.reply)
	}
}

func TestMessagesWindow(t *testing.T) {
	var history []Turn
	for i := range 8 {
		typ := TurnBot
		if i%2 == 0 {
			typ = TurnUser
		}
		history = append(history, Turn{Type: typ, Content: fmt.Sprint(i)})
	}

	msgs := Messages("plan my work", history)

	require.Len(t, msgs, 7)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Estimating pomodoros")
	assert.Equal(t, "3", msgs[1].Content)
	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
	assert.Equal(t, llm.RoleUser, msgs[2].Role)
	assert.Equal(t, "7", msgs[5].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "plan my work"}, msgs[6])

	plain := Messages("hello", nil)
	require.Len(t, plain, 2)
	assert.NotContains(t, plain[0].Content, "Estimating pomodoros")
}

func TestServiceReply(t *testing.T) {
	ctx := context.Background()

	c := &fakeCompleter{reply: "I enhanced your task title."}
	r, err := NewService(c).Reply(ctx, "my task is vague", nil)
	require.NoError(t, err)
	assert.Equal(t, "I enhanced your task title.", r.Text)
	require.NotNil(t, r.SuggestedTask)
	assert.Equal(t, placeholderSuggestion, *r.SuggestedTask)
	assert.Equal(t, 500, c.got.MaxTokens)
	assert.InDelta(t, 0.7, c.got.Temperature, 0.001)

	r, err = NewService(&fakeCompleter{}).Reply(ctx, "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, r.Text)
	assert.Nil(t, r.SuggestedTask)

	_, err = NewService(&fakeCompleter{err: errors.New("timeout")}).Reply(ctx, "hi", nil)
	assert.Error(t, err)
}
