// Package batch provides helpers for running an operation over many
// notification thread IDs and reporting per-item outcomes.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Running an operation over a list of IDs with bounded concurrency
//   - Formatting batch results in a consistent structure
//
// A failing item never aborts the batch; its error is captured in its Result.
package batch
