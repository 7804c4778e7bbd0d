// Package github wraps the GitHub REST API calls needed to triage the
// notifications inbox.
//
// It lists notification threads (following pagination), reads the state of a
// notification's subject (pull request or issue) and marks threads as done.
// Every call is traced with a github.<operation> span and recorded in the
// github_api_operations_total and github_api_operation_duration_seconds metrics.
//
// Example usage:
//
//	client, err := github.NewClient(token, "", github.WithMetrics(provider.Metrics()))
//	if err != nil {
//	    return err
//	}
//	threads, err := client.ListNotifications(ctx, github.ListOptions{})
package github
