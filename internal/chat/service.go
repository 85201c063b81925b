package chat

import (
	"context"
	"strings"

	"github.com/kazz187/pomofocus/internal/llm"
)

const (
	historyWindow = 5
	maxTokens     = 500
	temperature   = 0.7

	FallbackReply = "Sorry, I couldn't process that request."
)

const basePrompt = `You are a helpful productivity assistant that helps users manage their tasks and improve their productivity.

Your role is to:
1. Help users break down complex tasks into smaller, manageable steps
2. Suggest better ways to phrase and organize tasks
3. Estimate realistic time requirements
4. Provide productivity tips and advice

Keep responses concise, actionable, and friendly.`

const taskPrompt = `

When users describe tasks, you can suggest enhancements like:
- Breaking down complex tasks into subtasks
- Improving task titles to be more specific and actionable
- Estimating pomodoros (25-minute work sessions)
- Adding relevant context or resources

If you're enhancing a task, provide the enhanced version in a structured format.`

// Turn is one line of a conversation as the client keeps it. Type is "user"
// for the person and anything else (usually "bot") for the assistant.
type Turn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

const (
	TurnUser = "user"
	TurnBot  = "bot"
)

// SuggestedTask is a fixed placeholder attached to replies that look like a
// task suggestion. It is never derived from the reply.
type SuggestedTask struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	EstimatedPomodoros int    `json:"estimatedPomodoros"`
}

var placeholderSuggestion = SuggestedTask{
	Title:              "Enhanced Task Title",
	Description:        "Enhanced description with better context",
	EstimatedPomodoros: 2,
}

type Reply struct {
	Text          string
	SuggestedTask *SuggestedTask
}

var productivityKeywords = []string{"task", "todo", "project", "work"}

// IsProductivityRelated reports whether message mentions one of the
// productivity keywords, case-insensitively.
func IsProductivityRelated(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range productivityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SuggestsTask is the loose heuristic deciding whether reply carries a task
// suggestion. It is the only place that decision is made. "improved" counts
// on its own, "enhanced" only for a productivity-related message; both
// matches are case-sensitive.
func SuggestsTask(message, reply string) bool {
	if strings.Contains(reply, "improved") {
		return true
	}
	return IsProductivityRelated(message) && strings.Contains(reply, "enhanced")
}

type Service struct {
	completer llm.Completer
}

func NewService(completer llm.Completer) *Service {
	return &Service{completer: completer}
}

// Messages builds the model request: system prompt, the last five turns of
// history, then message.
func Messages(message string, history []Turn) []llm.Message {
	prompt := basePrompt
	if IsProductivityRelated(message) {
		prompt += taskPrompt
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: prompt})
	for _, turn := range history {
		role := llm.RoleAssistant
		if turn.Type == TurnUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: turn.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
}

func (s *Service) Reply(ctx context.Context, message string, history []Turn) (*Reply, error) {
	text, err := s.completer.Complete(ctx, llm.Request{
		Messages:    Messages(message, history),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}
	if text == "" {
		text = FallbackReply
	}
	r := &Reply{Text: text}
	if SuggestsTask(message, text) {
		s := placeholderSuggestion
		r.SuggestedTask = &s
	}
	return r, nil
}
