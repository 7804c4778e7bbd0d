// Package ui renders notification listings and cleanup results for the
// terminal and wraps the interactive confirmation prompt and spinner.
package ui
