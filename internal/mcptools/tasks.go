package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kazz187/pomofocus/internal/enhance"
	"github.com/kazz187/pomofocus/internal/lifecycle"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/internal/user"
)

// CreateTaskTool handles pomofocus_create_task. It follows the same rules
// as the HTTP agent endpoint: upsert the user, then create the task.
type CreateTaskTool struct {
	lifecycle *lifecycle.Manager
}

func NewCreateTaskTool(lc *lifecycle.Manager) *CreateTaskTool {
	return &CreateTaskTool{lifecycle: lc}
}

func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("pomofocus_create_task",
		mcp.WithDescription("Create a task for a user. The user is created on first use and renamed when user_name differs."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short, action-oriented task title")),
		mcp.WithString("description", mcp.Description("Optional details")),
		mcp.WithString("user_email", mcp.Required(), mcp.Description("Owner email")),
		mcp.WithString("user_name", mcp.Required(), mcp.Description("Owner display name")),
		mcp.WithNumber("estimated_pomodoros", mcp.Description("25-minute work sessions needed (default 1)")),
	)
}

func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	email := user.NormalizeEmail(req.GetString("user_email", ""))
	name := user.NormalizeName(req.GetString("user_name", ""))
	if strings.TrimSpace(title) == "" || email == "" || name == "" {
		return mcp.NewToolResultError("'title', 'user_email' and 'user_name' are required"), nil
	}

	if _, err := t.lifecycle.EnsureUser(ctx, email, name); err != nil {
		return errorResult("save user", err), nil
	}
	created, err := t.lifecycle.CreateTask(ctx, title, req.GetString("description", ""),
		intArg(req, "estimated_pomodoros", task.DefaultPomodoros), email)
	if err != nil {
		return errorResult("create task", err), nil
	}
	return taskResult(fmt.Sprintf("Task created: %q", created.Title), created)
}

// ListTasksTool handles pomofocus_list_tasks.
type ListTasksTool struct {
	lifecycle *lifecycle.Manager
}

func NewListTasksTool(lc *lifecycle.Manager) *ListTasksTool {
	return &ListTasksTool{lifecycle: lc}
}

func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("pomofocus_list_tasks",
		mcp.WithDescription("List a user's tasks, newest first."),
		mcp.WithString("user_email", mcp.Required(), mcp.Description("Owner email")),
		mcp.WithBoolean("include_completed", mcp.Description("Include completed tasks (default true)")),
	)
}

func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email := req.GetString("user_email", "")
	if strings.TrimSpace(email) == "" {
		return mcp.NewToolResultError("'user_email' is required"), nil
	}
	includeCompleted, ok := boolArg(req, "include_completed")
	if !ok {
		includeCompleted = true
	}

	tasks, err := t.lifecycle.ListTasks(ctx, email)
	if err != nil {
		return errorResult("list tasks", err), nil
	}

	var sb strings.Builder
	shown := 0
	for _, tk := range tasks {
		if tk.Completed && !includeCompleted {
			continue
		}
		formatTask(&sb, tk)
		shown++
	}
	if shown == 0 {
		return mcp.NewToolResultText("No tasks."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("## Tasks (%d)\n\n%s", shown, sb.String())), nil
}

// UpdateTaskTool handles pomofocus_update_task.
type UpdateTaskTool struct {
	lifecycle *lifecycle.Manager
}

func NewUpdateTaskTool(lc *lifecycle.Manager) *UpdateTaskTool {
	return &UpdateTaskTool{lifecycle: lc}
}

func (t *UpdateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("pomofocus_update_task",
		mcp.WithDescription("Change a task's title, description or estimate. Omitted fields are kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithNumber("estimated_pomodoros", mcp.Description("New estimate")),
	)
}

func (t *UpdateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	patch := task.Patch{
		Title:       stringPtrArg(req, "title"),
		Description: stringPtrArg(req, "description"),
	}
	if _, ok := req.GetArguments()["estimated_pomodoros"]; ok {
		n := intArg(req, "estimated_pomodoros", task.DefaultPomodoros)
		patch.EstimatedPomodoros = &n
	}
	if patch.IsEmpty() {
		return mcp.NewToolResultError("nothing to update"), nil
	}

	updated, err := t.lifecycle.UpdateTask(ctx, id, patch)
	if err != nil {
		return errorResult("update task", err), nil
	}
	return taskResult("Task updated.", updated)
}

// SetCompletedTool handles pomofocus_set_completed.
type SetCompletedTool struct {
	lifecycle *lifecycle.Manager
}

func NewSetCompletedTool(lc *lifecycle.Manager) *SetCompletedTool {
	return &SetCompletedTool{lifecycle: lc}
}

func (t *SetCompletedTool) Definition() mcp.Tool {
	return mcp.NewTool("pomofocus_set_completed",
		mcp.WithDescription("Mark a task as completed or not completed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
		mcp.WithBoolean("completed", mcp.Required(), mcp.Description("New completion state")),
	)
}

func (t *SetCompletedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	completed, ok := boolArg(req, "completed")
	if id == "" || !ok {
		return mcp.NewToolResultError("'id' and 'completed' are required"), nil
	}
	updated, err := t.lifecycle.ToggleComplete(ctx, id, completed)
	if err != nil {
		return errorResult("update task", err), nil
	}
	return taskResult("Task updated.", updated)
}

// DeleteTaskTool handles pomofocus_delete_task.
type DeleteTaskTool struct {
	lifecycle *lifecycle.Manager
}

func NewDeleteTaskTool(lc *lifecycle.Manager) *DeleteTaskTool {
	return &DeleteTaskTool{lifecycle: lc}
}

func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("pomofocus_delete_task",
		mcp.WithDescription("Delete a task permanently."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	)
}

func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.lifecycle.DeleteTask(ctx, id); err != nil {
		return errorResult("delete task", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted.", id)), nil
}

// EnhanceTaskTool handles pomofocus_enhance_task. The suggestion is applied
// immediately.
type EnhanceTaskTool struct {
	lifecycle *lifecycle.Manager
	enhancer  *enhance.Service
}

func NewEnhanceTaskTool(lc *lifecycle.Manager, enhancer *enhance.Service) *EnhanceTaskTool {
	return &EnhanceTaskTool{lifecycle: lc, enhancer: enhancer}
}

func (t *EnhanceTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("pomofocus_enhance_task",
		mcp.WithDescription("Rewrite a task's title, description and estimate with the language model and save the result."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
		mcp.WithString("user_email", mcp.Required(), mcp.Description("Owner email; the task must belong to this user")),
	)
}

func (t *EnhanceTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	email := req.GetString("user_email", "")
	if id == "" || strings.TrimSpace(email) == "" {
		return mcp.NewToolResultError("'id' and 'user_email' are required"), nil
	}
	current, err := t.lifecycle.GetTask(ctx, id)
	if err != nil {
		return errorResult("load task", err), nil
	}
	res, err := t.enhancer.Enhance(ctx, enhance.Request{
		TaskID:      id,
		Title:       current.Title,
		Description: current.Description,
		UserEmail:   email,
	})
	if err != nil {
		return errorResult("enhance task", err), nil
	}
	return taskResult("Task enhanced: "+res.Suggestion.Reasoning, res.Task)
}
