package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/gh-notifications-cleanup/internal/config"
	ghclient "github.com/teemow/gh-notifications-cleanup/internal/github"
	"github.com/teemow/gh-notifications-cleanup/internal/instrumentation"
	"github.com/teemow/gh-notifications-cleanup/internal/logging"
	"github.com/teemow/gh-notifications-cleanup/internal/notifications"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI
func SetVersion(v string) {
	version = v
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Marks GitHub notifications of closed issues and PRs as done",
		Long: `gh-notifications-cleanup finds GitHub notifications whose pull request or
issue has been closed and marks them as done.

It can run as:
  - A standalone CLI tool (default, lists cleanable notifications)
  - An MCP (Model Context Protocol) server for AI assistants`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(fmt.Sprintf("{{printf \"%s version %%s\\n\" .Version}}", config.AppName))

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/gh-notifications-cleanup/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", logging.FormatText, "Log format (text, json)")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newCleanCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGenerateDocsCmd())

	return cmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	// If no subcommand is provided, run the list command by default
	if len(args) == 0 {
		args = []string{"list"}
	}
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

// readError marks a failure to fetch the notification inbox.
type readError struct {
	err error
}

func (e *readError) Error() string {
	return "reading notifications: " + e.err.Error()
}

func (e *readError) Unwrap() error {
	return e.err
}

func printError(w io.Writer, err error) {
	var rerr *readError
	switch {
	case errors.Is(err, config.ErrMissingToken):
		fmt.Fprintln(w, config.MissingTokenHint)
	case errors.As(err, &rerr):
		cause := errors.Unwrap(rerr.err)
		if cause == nil {
			cause = rerr.err
		}
		fmt.Fprintf(w, "Failed to read notifications: %v\n", cause)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

// loadConfig reads the config file and environment, applies explicitly set
// persistent flags and validates the result.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = o.debug
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app bundles what a command needs to talk to GitHub.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *notifications.Service
}

// newApp builds the logger, GitHub client and notification service. Logs go
// to the command's stderr so stdout stays free for results.
func (o *rootOptions) newApp(cmd *cobra.Command, metrics *instrumentation.Metrics) (*app, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), logging.Options{Format: cfg.LogFormat, Debug: cfg.Debug})
	logger.Debug("configuration loaded",
		"token", logging.SanitizeToken(cfg.Token),
		"api_url", cfg.APIURL,
		"concurrency", cfg.Concurrency)

	client, err := ghclient.NewClient(cfg.Token, cfg.APIURL, ghclient.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	adapter := logging.NewSlogAdapter(logger)
	service := notifications.NewService(client,
		notifications.WithLogger(adapter),
		notifications.WithConcurrency(cfg.Concurrency),
		notifications.WithMetrics(metrics),
		notifications.WithProgress(func(done, total int) {
			logger.Debug("classified notification", "done", done, "total", total)
		}),
	)

	return &app{cfg: cfg, logger: logger, service: service}, nil
}
