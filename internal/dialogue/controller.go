// Package dialogue implements the guided "add todo" conversation on top of
// a free-form chat. One Controller holds one conversation; independent
// conversations use independent controllers.
package dialogue

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kazz187/pomofocus/internal/chat"
	"github.com/kazz187/pomofocus/internal/task"
)

type Phase int

const (
	Idle Phase = iota
	AwaitingConfirmation
	AwaitingTitle
	AwaitingDescription
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case AwaitingTitle:
		return "awaiting_title"
	case AwaitingDescription:
		return "awaiting_description"
	default:
		return "unknown"
	}
}

const (
	MsgGreeting          = "Hi! I'm your AI productivity assistant. I can help enhance tasks or add new ones. Say 'add todo' to create a task, and I'll ask for the title and description."
	MsgConfirm           = "Great! Do you want to add a new todo now? (yes/no)"
	MsgAskTitle          = "Awesome. What is the task title?"
	MsgCancelled         = `No problem. Say "add todo" anytime to create a task.`
	MsgAnswerYesNo       = "Please answer yes or no. Do you want to add a new todo now?"
	MsgTitleTooShort     = "Please provide a concise, action-oriented title."
	MsgAskDescription    = `Got it. Add an optional description (or type "skip").`
	MsgNoIdentity        = "User email not available. Please make sure you are signed in."
	MsgCreated           = "Your todo has been added. I will enhance it shortly."
	MsgCreateFailed      = "Sorry, I could not create the todo. Please try again."
	MsgChatFailed        = "Sorry, I encountered an error. Please try again."
	MsgSuggestionOffered = `I've enhanced your task! Would you like me to apply these improvements? Run "pomofocus enhance" on the task to use the improved version.`
)

const minTitleLength = 2

var (
	triggerPattern = regexp.MustCompile(`(?i)\badd\s*(todo|task)\b`)
	confirmPattern = regexp.MustCompile(`(?i)^(y|yes|sure|ok|okay)$`)
	denyPattern    = regexp.MustCompile(`(?i)^(n|no|not now)$`)
	skipPattern    = regexp.MustCompile(`(?i)^(skip|none|no)$`)
)

// TaskCreator persists the task collected by the guided flow.
type TaskCreator interface {
	CreateTask(ctx context.Context, title, description string, estimatedPomodoros int, ownerEmail string) (*task.Task, error)
}

// Responder answers free-form input.
type Responder interface {
	Reply(ctx context.Context, message string, history []chat.Turn) (*chat.Reply, error)
}

// Result is what one input produced.
type Result struct {
	// Turns are the assistant turns appended for this input.
	Turns []chat.Turn
	// Created is set when the input completed the guided flow successfully.
	Created *task.Task
	// Suggestion is set when the chat reply looked like a task suggestion.
	Suggestion *chat.SuggestedTask
}

type Controller struct {
	// mu serializes inputs; a second input waits for the first to finish.
	mu sync.Mutex

	ownerEmail string
	tasks      TaskCreator
	responder  Responder

	phase            Phase
	draftTitle       string
	draftDescription string
	log              []chat.Turn
}

// NewController starts a conversation for ownerEmail, which may be empty
// when nobody is signed in. The log starts with a greeting.
func NewController(ownerEmail string, tasks TaskCreator, responder Responder) *Controller {
	return &Controller{
		ownerEmail: ownerEmail,
		tasks:      tasks,
		responder:  responder,
		log:        []chat.Turn{{Type: chat.TurnBot, Content: MsgGreeting}},
	}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Drafts() (title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftTitle, c.draftDescription
}

// Log returns a copy of the conversation so far.
func (c *Controller) Log() []chat.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Turn(nil), c.log...)
}

// Handle processes one line of user input. Blank input is ignored. Every
// other input is logged as a user turn and answered with at least one
// assistant turn.
func (c *Controller) Handle(ctx context.Context, input string) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := strings.TrimSpace(input)
	if text == "" {
		return &Result{}
	}
	history := append([]chat.Turn(nil), c.log...)
	c.log = append(c.log, chat.Turn{Type: chat.TurnUser, Content: text})

	res := &Result{}
	say := func(msg string) {
		turn := chat.Turn{Type: chat.TurnBot, Content: msg}
		c.log = append(c.log, turn)
		res.Turns = append(res.Turns, turn)
	}

	switch c.phase {
	case Idle:
		if triggerPattern.MatchString(text) {
			c.phase = AwaitingConfirmation
			say(MsgConfirm)
			return res
		}
		c.converse(ctx, text, history, res, say)

	case AwaitingConfirmation:
		switch {
		case confirmPattern.MatchString(text):
			c.phase = AwaitingTitle
			say(MsgAskTitle)
		case denyPattern.MatchString(text):
			c.reset()
			say(MsgCancelled)
		default:
			say(MsgAnswerYesNo)
		}

	case AwaitingTitle:
		if utf8.RuneCountInString(text) < minTitleLength {
			say(MsgTitleTooShort)
			return res
		}
		c.draftTitle = text
		c.phase = AwaitingDescription
		say(MsgAskDescription)

	case AwaitingDescription:
		if !skipPattern.MatchString(text) {
			c.draftDescription = text
		}
		c.create(ctx, res, say)
	}
	return res
}

func (c *Controller) create(ctx context.Context, res *Result, say func(string)) {
	defer c.reset()
	if c.ownerEmail == "" {
		say(MsgNoIdentity)
		return
	}
	t, err := c.tasks.CreateTask(ctx, c.draftTitle, c.draftDescription, task.DefaultPomodoros, c.ownerEmail)
	if err != nil {
		slog.WarnContext(ctx, "failed to create task from dialogue", "error", err)
		say(MsgCreateFailed)
		return
	}
	res.Created = t
	say(MsgCreated)
}

func (c *Controller) converse(ctx context.Context, text string, history []chat.Turn, res *Result, say func(string)) {
	reply, err := c.responder.Reply(ctx, text, history)
	if err != nil {
		slog.WarnContext(ctx, "chat request failed", "error", err)
		say(MsgChatFailed)
		return
	}
	say(reply.Text)
	if reply.SuggestedTask != nil {
		res.Suggestion = reply.SuggestedTask
		say(MsgSuggestionOffered)
	}
}

func (c *Controller) reset() {
	c.phase = Idle
	c.draftTitle = ""
	c.draftDescription = ""
}
