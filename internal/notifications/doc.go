// Package notifications finds GitHub notification threads whose pull request
// or issue has been closed and marks them as done.
//
// The pipeline has two stages. List fetches the whole inbox and classifies
// each thread by looking up the state of its subject, one lookup at a time.
// Cleanup marks the resulting candidates as done with bounded concurrency.
// Per-item failures in either stage are logged as warnings and never abort
// the run.
package notifications
