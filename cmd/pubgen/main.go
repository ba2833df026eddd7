// Package main provides the pubgen CLI entry point.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aimlgroup/pubgen/internal/config"
	"github.com/aimlgroup/pubgen/internal/logger"
)

// Version is set at build time via ldflags
var Version = "dev"

// options holds the persistent flags shared by all commands.
type options struct {
	root       string
	jsonOutput bool
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		return reportError(stdout, stderr, opts.jsonOutput, err)
	}
	return ExitSuccess
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pubgen",
		Short: "Build the website publication list from references.bib",
		Long: `pubgen converts the group's BibTeX bibliography into the data files the
website loads: build/publications.json and build/publications-data.js.

Each entry gets derived display fields: a type label, slugged topics, an
image path (explicit field, images/<cite>.<ext>, or the default image) and a
site-relative URL.

Running pubgen without a subcommand is the same as 'pubgen generate'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}
	cmd.Version = Version

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.root, "root", "", "project root (default: $PUBGEN_ROOT, or the nearest directory with pubgen.yml or references.bib)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newCheckCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// project is the resolved context every command works in.
type project struct {
	root string
	cfg  *config.Config
	log  *logger.Logger
}

// loadProject resolves the root, loads configuration and sets up logging.
func loadProject(cmd *cobra.Command, opts *options) (*project, error) {
	root, err := config.ResolveRoot(opts.root)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}
	if opts.verbose {
		log.SetLevel(slog.LevelDebug)
	}

	log.Debug("loaded config", "root", root)
	return &project{root: root, cfg: cfg, log: log}, nil
}
