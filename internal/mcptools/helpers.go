// Package mcptools exposes the task lifecycle as MCP tools so that external
// agents can create and manage tasks.
//
// Each tool is a struct holding its dependencies, with Definition()
// returning the mcp.Tool schema and Handle() serving a call.
package mcptools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

// intArg extracts an integer argument, returning defaultVal if the key is
// missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string) (value, ok bool) {
	value, ok = req.GetArguments()[key].(bool)
	return value, ok
}

// stringPtrArg returns nil when key is absent so partial updates can tell
// "not given" from "empty".
func stringPtrArg(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func errorResult(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %s", action, cerr.Message(err)))
}

func taskResult(prefix string, t *task.Task) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal task: %w", err)
	}
	return mcp.NewToolResultText(prefix + "\n\n" + string(data)), nil
}

func formatTask(sb *strings.Builder, t *task.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(sb, "- [%s] %s (%d pomodoro", mark, t.Title, t.EstimatedPomodoros)
	if t.EstimatedPomodoros != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(sb, ") id=%s\n", t.ID)
	if t.Description != "" {
		fmt.Fprintf(sb, "  %s\n", strings.ReplaceAll(t.Description, "\n", "\n  "))
	}
}
