package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gh-notifications-cleanup/internal/notifications"
	"github.com/teemow/gh-notifications-cleanup/internal/ui"
)

// Output formats for list and clean.
const (
	outputText = "text"
	outputJSON = "json"
)

// listFlags are the filters and output settings shared by list and clean.
type listFlags struct {
	since  string
	all    bool
	output string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.since, "since", "", "Only consider notifications updated after this ISO 8601 date or timestamp (2006-01-02, 2006-01-02T15:04:05, optional Z or offset; UTC when omitted)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Include notifications already marked as read")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputText, "Output format (text, json)")
}

func (f *listFlags) listOptions() (notifications.ListOptions, error) {
	if f.output != outputText && f.output != outputJSON {
		return notifications.ListOptions{}, fmt.Errorf("invalid output format %q, must be one of: text, json", f.output)
	}
	since, err := notifications.ParseSince(f.since)
	if err != nil {
		return notifications.ListOptions{}, err
	}
	return notifications.ListOptions{Since: since, All: f.all}, nil
}

func newListCmd(root *rootOptions) *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications of closed issues and PRs",
		Long: `List GitHub notifications whose pull request or issue has been closed.
Nothing is modified. This is the default command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, root, flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func runList(cmd *cobra.Command, root *rootOptions, flags *listFlags) error {
	opts, err := flags.listOptions()
	if err != nil {
		return err
	}

	a, err := root.newApp(cmd, nil)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	result, err := classify(cmd, a.service, opts, flags.output == outputText)
	if err != nil {
		return err
	}

	if flags.output == outputJSON {
		return printer.JSON(ui.NewListJSON(result))
	}

	printer.Inbox(result.Total)
	if result.Total > 0 {
		printer.Candidates(result)
	}
	return nil
}

// classify runs the listing, showing a spinner when text goes to a terminal.
func classify(cmd *cobra.Command, service *notifications.Service, opts notifications.ListOptions, text bool) (*notifications.ListResult, error) {
	var (
		result  *notifications.ListResult
		listErr error
	)
	animate := text && isTerminalWriter(cmd.OutOrStdout())
	err := ui.RunWithSpinner("Checking notifications...", animate, func() {
		result, listErr = service.List(cmd.Context(), opts)
	})
	if err != nil {
		return nil, err
	}
	if listErr != nil {
		return nil, &readError{err: listErr}
	}
	return result, nil
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}
