// Package cmd implements the command-line interface for gh-notifications-cleanup.
//
// This package provides the following commands:
//   - list: Show notifications whose pull request or issue is closed
//   - clean: Mark those notifications as done after confirmation
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The list command is the default command when no subcommand is specified.
package cmd
