// Package common provides shared utilities for MCP tool implementations,
// such as argument helpers and the instrumentation wrapper applied to every
// tool handler.
package common
