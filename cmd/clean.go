package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gh-notifications-cleanup/internal/tools/batch"
	"github.com/teemow/gh-notifications-cleanup/internal/ui"
)

// Replaced in tests.
var (
	confirm         = ui.Confirm
	stdinIsTerminal = func(r io.Reader) bool {
		f, ok := r.(*os.File)
		return ok && ui.IsTerminal(f)
	}
)

var errJSONNeedsYes = errors.New("--output json requires --yes")

func newCleanCmd(root *rootOptions) *cobra.Command {
	flags := &listFlags{}
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Mark notifications of closed issues and PRs as done",
		Long: `Find GitHub notifications whose pull request or issue has been closed and
mark them as done after confirmation.

Without a terminal the command refuses to run unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, root, flags, yes)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runClean(cmd *cobra.Command, root *rootOptions, flags *listFlags, yes bool) error {
	opts, err := flags.listOptions()
	if err != nil {
		return err
	}
	jsonOutput := flags.output == outputJSON
	if jsonOutput && !yes {
		return errJSONNeedsYes
	}

	a, err := root.newApp(cmd, nil)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	result, err := classify(cmd, a.service, opts, !jsonOutput)
	if err != nil {
		return err
	}

	if jsonOutput {
		results := a.service.Cleanup(cmd.Context(), result.Candidates, io.Discard)
		printer.Println(batch.FormatResults(results))
		return nil
	}

	printer.Inbox(result.Total)
	if result.Total == 0 {
		return nil
	}
	printer.Candidates(result)
	if len(result.Candidates) == 0 {
		return nil
	}

	if !yes {
		if !stdinIsTerminal(cmd.InOrStdin()) {
			return fmt.Errorf("refusing to mark %d notification(s) as done without a terminal, pass --yes to confirm", len(result.Candidates))
		}
		ok, err := confirm(fmt.Sprintf("Found %d closed PR/Issue notification(s). Do you want to close them?", len(result.Candidates)))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			printer.Println("Aborting cleanup.")
			return nil
		}
	}

	printer.Println("Cleanup notifications...")
	results := a.service.Cleanup(cmd.Context(), result.Candidates, printer.Writer())
	printer.CleanupSummary(results)
	return nil
}
