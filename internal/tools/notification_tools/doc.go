// Package notification_tools exposes the GitHub notifications cleanup
// pipeline as MCP tools.
//
// github_list_closed_notifications is read-only and always registered.
// github_cleanup_notifications marks threads as done and is only registered
// when the server runs with --yolo.
package notification_tools
