package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kazz187/pomofocus/internal/enhance"
	"github.com/kazz187/pomofocus/internal/lifecycle"
)

const instructions = `Pomofocus keeps per-user task lists. Estimates are in pomodoros (25-minute work sessions).
Create tasks with pomofocus_create_task, read them back with pomofocus_list_tasks, and use the task id for updates.`

// NewServer returns an MCP server with every task tool registered.
func NewServer(version string, lc *lifecycle.Manager, enhancer *enhance.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"pomofocus",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	createTool := NewCreateTaskTool(lc)
	s.AddTool(createTool.Definition(), createTool.Handle)

	listTool := NewListTasksTool(lc)
	s.AddTool(listTool.Definition(), listTool.Handle)

	updateTool := NewUpdateTaskTool(lc)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	completedTool := NewSetCompletedTool(lc)
	s.AddTool(completedTool.Definition(), completedTool.Handle)

	deleteTool := NewDeleteTaskTool(lc)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	enhanceTool := NewEnhanceTaskTool(lc, enhancer)
	s.AddTool(enhanceTool.Definition(), enhanceTool.Handle)

	return s
}
