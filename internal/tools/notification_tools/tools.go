package notification_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gh-notifications-cleanup/internal/notifications"
	"github.com/teemow/gh-notifications-cleanup/internal/server"
	"github.com/teemow/gh-notifications-cleanup/internal/tools/batch"
	"github.com/teemow/gh-notifications-cleanup/internal/tools/common"
	"github.com/teemow/gh-notifications-cleanup/internal/ui"
)

// Tool names.
const (
	ListToolName    = "github_list_closed_notifications"
	CleanupToolName = "github_cleanup_notifications"
)

var errNotEligible = errors.New("not eligible for cleanup")

// RegisterNotificationTools registers the notification tools with the MCP server
func RegisterNotificationTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool(ListToolName,
		mcp.WithDescription("List GitHub notifications whose pull request or issue is closed and that can be marked as done"),
		mcp.WithString("since",
			mcp.Description("Only consider notifications updated after this ISO 8601 date or timestamp (e.g. 2024-01-02)"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Include notifications already marked as read (default: false)"),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler(ListToolName, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListClosedNotifications(ctx, request, sc)
		}))

	// Marking threads as done cannot be undone through the API
	if !sc.Yolo() {
		return nil
	}

	cleanupTool := mcp.NewTool(CleanupToolName,
		mcp.WithDescription("Mark GitHub notifications of closed pull requests and issues as done. Only notifications that are currently eligible are touched."),
		mcp.WithString("since",
			mcp.Description("Only consider notifications updated after this ISO 8601 date or timestamp"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Include notifications already marked as read (default: false)"),
		),
		mcp.WithString("ids",
			mcp.Description("Notification thread ID or JSON array of IDs to restrict the cleanup to. Defaults to every eligible notification."),
		),
	)
	s.AddTool(cleanupTool, common.InstrumentedToolHandler(CleanupToolName, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCleanupNotifications(ctx, request, sc)
		}))

	return nil
}

func listOptionsFromArgs(args map[string]any) (notifications.ListOptions, error) {
	since, err := notifications.ParseSince(common.StringArg(args, "since"))
	if err != nil {
		return notifications.ListOptions{}, err
	}
	return notifications.ListOptions{Since: since, All: common.BoolArg(args, "all")}, nil
}

func handleListClosedNotifications(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	opts, err := listOptionsFromArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := sc.Notifications().List(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read notifications: %v", err)), nil
	}

	out, _ := json.MarshalIndent(ui.NewListJSON(result), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func handleCleanupNotifications(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	opts, err := listOptionsFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var requested []string
	if args["ids"] != nil {
		requested, err = batch.ParseStringOrArray(args["ids"], "ids")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	// Re-classify so that only currently closed subjects are touched
	result, err := sc.Notifications().List(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read notifications: %v", err)), nil
	}

	selected, rejected := selectCandidates(result.Candidates, requested)

	// stdout carries the MCP protocol in stdio mode
	results := sc.Notifications().Cleanup(ctx, selected, io.Discard)
	results = append(results, rejected...)

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// selectCandidates restricts candidates to the requested ids. Requested ids
// that are not candidates are returned as error results. An empty request
// selects every candidate.
func selectCandidates(candidates []notifications.Candidate, requested []string) ([]notifications.Candidate, []batch.Result) {
	if len(requested) == 0 {
		return candidates, nil
	}

	byID := make(map[string]notifications.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID()] = c
	}

	var selected []notifications.Candidate
	var rejected []batch.Result
	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true

		if c, ok := byID[id]; ok {
			selected = append(selected, c)
		} else {
			rejected = append(rejected, batch.NewErrorResult(id, errNotEligible))
		}
	}
	return selected, rejected
}
