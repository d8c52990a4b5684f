package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/taskboard/internal/board"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

const statusDescription = "Task status (todo|doing|done)"

// NewServer creates a new MCP server exposing the board as tools.
func NewServer(ctrl *board.Controller) *server.MCPServer {
	s := server.NewMCPServer("Taskboard", "0.1.0")

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the To do column. Blank titles are ignored."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
	), addTaskHandler(ctrl))

	s.AddTool(mcp.NewTool("remove_task",
		mcp.WithDescription("Remove a task by id."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), removeTaskHandler(ctrl))

	s.AddTool(mcp.NewTool("set_task_status",
		mcp.WithDescription("Move a task to another column."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("status", mcp.Description(statusDescription), mcp.Required()),
	), setTaskStatusHandler(ctrl))

	s.AddTool(mcp.NewTool("set_task_title",
		mcp.WithDescription("Rename a task. Blank titles are ignored."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title"), mcp.Required()),
	), setTaskTitleHandler(ctrl))

	s.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Mark a task done, or a done task back to todo."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), toggleTaskHandler(ctrl))

	s.AddTool(mcp.NewTool("clear_done",
		mcp.WithDescription("Remove every task in the Done column."),
	), clearDoneHandler(ctrl))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, newest first, optionally filtered by status."),
		mcp.WithString("status", mcp.Description(statusDescription)),
	), listTasksHandler(ctrl))

	s.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Get the board: three columns with their tasks and counts."),
	), getBoardHandler(ctrl))

	s.AddTool(mcp.NewTool("drop_task",
		mcp.WithDescription("Resolve a drag-and-drop gesture. Dropping on a column id (col:todo, col:doing, col:done) moves the task; any other target is ignored."),
		mcp.WithString("dragged_id", mcp.Description("Id of the dragged task"), mcp.Required()),
		mcp.WithString("target", mcp.Description("Drop target id; omit for a drop outside any target")),
	), dropTaskHandler(ctrl))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// jsonResult encodes data as a text result. A save error turns it into an
// error result that still carries the in-memory board.
func jsonResult(data any, saveErr error) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if saveErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("change applied but not saved: %v\n%s", saveErr, payload)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func addTaskHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title := mcp.ParseString(request, "title", "")

		task, tasks, err := ctrl.Add(ctx, title)
		return jsonResult(map[string]any{"task": task, "tasks": tasks}, err)
	}
}

func removeTaskHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		removed, tasks, err := ctrl.Remove(ctx, id)
		return jsonResult(map[string]any{"removed": removed, "tasks": tasks}, err)
	}
}

func setTaskStatusHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		status, _ := models.ParseStatus(mcp.ParseString(request, "status", ""))

		tasks, err := ctrl.SetStatus(ctx, id, status)
		if errors.Is(err, board.ErrInvalidStatus) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"tasks": tasks}, err)
	}
}

func setTaskTitleHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		title := mcp.ParseString(request, "title", "")

		tasks, err := ctrl.SetTitle(ctx, id, title)
		return jsonResult(map[string]any{"tasks": tasks}, err)
	}
}

func toggleTaskHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := ctrl.Toggle(ctx, mcp.ParseString(request, "id", ""))
		return jsonResult(map[string]any{"tasks": tasks}, err)
	}
}

func clearDoneHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := ctrl.ClearDone(ctx)
		return jsonResult(map[string]any{"tasks": tasks}, err)
	}
}

func listTasksHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		raw, ok := args["status"].(string)
		if !ok || raw == "" {
			return jsonResult(map[string]any{"tasks": ctrl.Tasks()}, nil)
		}

		status, valid := models.ParseStatus(raw)
		if !valid {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid status '%s'", raw)), nil
		}
		return jsonResult(map[string]any{"tasks": ctrl.View(status)}, nil)
	}
}

func getBoardHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(ctrl.Snapshot(), nil)
	}
}

func dropTaskHandler(ctrl *board.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		draggedID := mcp.ParseString(request, "dragged_id", "")

		var target *string
		if t, ok := args["target"].(string); ok {
			target = &t
		}

		cmd, tasks, err := ctrl.Drop(ctx, draggedID, target)
		return jsonResult(map[string]any{
			"kind":    cmd.Kind.String(),
			"command": cmd,
			"tasks":   tasks,
		}, err)
	}
}
