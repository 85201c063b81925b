package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kazz187/pomofocus/internal/llm"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

// ErrMalformedResponse is returned when the model's reply is not the
// expected enhancement payload.
var ErrMalformedResponse = errors.New("malformed enhancement response")

const systemPrompt = "You are a productivity expert who helps improve task clarity and actionability. Always respond with valid JSON."

const (
	maxTokens   = 500
	temperature = 0.3
)

type Suggestion struct {
	Title              string `json:"enhancedTitle"`
	Description        string `json:"enhancedDescription"`
	EstimatedPomodoros int    `json:"estimatedPomodoros"`
	Reasoning          string `json:"reasoning"`
}

func Prompt(title, description string) string {
	var b strings.Builder
	b.WriteString("Please enhance this task to make it more actionable and clear:\n\n")
	fmt.Fprintf(&b, "Original Task: %q\n", title)
	if description != "" {
		fmt.Fprintf(&b, "Description: %q\n", description)
	}
	b.WriteString(`
Please provide:
1. An improved, more specific title
2. A better description with actionable steps
3. A realistic estimate of pomodoros (25-minute work sessions) needed
4. Any relevant context or resources

Format your response as JSON:
{
  "enhancedTitle": "Improved task title",
  "enhancedDescription": "Better description with steps",
  "estimatedPomodoros": 3,
  "reasoning": "Why these changes improve the task"
}

Keep the enhanced title concise but specific. Break down complex tasks into clear, actionable steps.`)
	return b.String()
}

// ParseSuggestion validates raw as an enhancement payload. The object may
// be wrapped in a markdown code fence. Every field must be present with the
// right JSON type, the title must not be blank and the estimate must be a
// whole number.
func ParseSuggestion(raw string) (*Suggestion, error) {
	body := stripFence(raw)
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedResponse)
	}

	var (
		s   Suggestion
		err error
	)
	if s.Title, err = stringField(fields, "enhancedTitle"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.Title) == "" {
		return nil, fmt.Errorf("%w: enhancedTitle is empty", ErrMalformedResponse)
	}
	if s.Description, err = stringField(fields, "enhancedDescription"); err != nil {
		return nil, err
	}
	if s.Reasoning, err = stringField(fields, "reasoning"); err != nil {
		return nil, err
	}
	n, ok := fields["estimatedPomodoros"].(json.Number)
	if !ok {
		return nil, fmt.Errorf("%w: estimatedPomodoros is not a number", ErrMalformedResponse)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: estimatedPomodoros is not a whole number", ErrMalformedResponse)
	}
	s.EstimatedPomodoros = int(f)
	return &s, nil
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrMalformedResponse, key)
	}
	return v, nil
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Applier persists an accepted suggestion.
type Applier interface {
	ApplyEnhancement(ctx context.Context, id, ownerEmail, title, description string, estimatedPomodoros int) (*task.Task, error)
}

type Service struct {
	completer llm.Completer
	applier   Applier
}

func NewService(completer llm.Completer, applier Applier) *Service {
	return &Service{completer: completer, applier: applier}
}

// Suggest asks the model for an enhancement of the given task text.
func (s *Service) Suggest(ctx context.Context, title, description string) (*Suggestion, error) {
	raw, err := s.completer.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: Prompt(title, description)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "Internal server error", err)
	}
	sg, err := ParseSuggestion(raw)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "Failed to parse AI enhancement", err)
	}
	return sg, nil
}

type Request struct {
	TaskID      string
	Title       string
	Description string
	UserEmail   string
}

type Result struct {
	Task       *task.Task
	Suggestion *Suggestion
}

// Enhance fetches a suggestion and applies it right away. Nothing is
// written when the suggestion cannot be parsed.
func (s *Service) Enhance(ctx context.Context, req Request) (*Result, error) {
	if req.TaskID == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.UserEmail) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "Missing required fields: taskId, title, userEmail", nil)
	}
	sg, err := s.Suggest(ctx, req.Title, req.Description)
	if err != nil {
		return nil, err
	}
	t, err := s.applier.ApplyEnhancement(ctx, req.TaskID, req.UserEmail, sg.Title, sg.Description, sg.EstimatedPomodoros)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, err
		}
		return nil, cerr.NewError(cerr.Internal, "Failed to update task in database", err)
	}
	return &Result{Task: t, Suggestion: sg}, nil
}
