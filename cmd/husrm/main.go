// Package main implements the husrm CLI for mining high-utility sequential rules.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	internal "github.com/ZanzyTHEbar/husrm/husrm"
	"github.com/ZanzyTHEbar/husrm/husrm/config"
)

// version information
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the streams and the flag values shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string
	input      string
	maxSeqs    int

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   internal.DefaultAppCMDShortCut,
		Short: "Mine high-utility sequential rules from a sequence database",
		Long: `husrm discovers sequential rules "A ==> C" whose total utility and
confidence reach the requested thresholds.

Each input line is one sequence: items written as item[utility], -1 closing an
itemset, -2 closing the sequence and an optional S:<total utility> declaration.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default searches ./config.yaml and "+internal.DefaultGlobalConfigFile+")")
	pf.StringVar(&a.logLevel, "log-level", internal.DefaultLogLevel, "log level: trace, debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", internal.DefaultLogFormat, "log format: console or json")
	pf.StringVarP(&a.input, "input", "i", "", "corpus file, - for stdin")
	pf.IntVar(&a.maxSeqs, "max-sequences", internal.DefaultMaxSequences, "stop reading after this many sequences (0 = all)")

	root.AddCommand(newMineCmd(a))
	root.AddCommand(newStatsCmd(a))
	root.AddCommand(newCompareCmd(a))
	return root
}

// setup loads the configuration, applies persistent flag overrides and
// builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	if flags.Changed("input") {
		cfg.Input.Path = a.input
	}
	if flags.Changed("max-sequences") {
		cfg.Input.MaxSequences = a.maxSeqs
	}
	if cfg.Input.Path == "" {
		return fmt.Errorf("no input corpus: pass --input or set input.path")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = internal.NewLogger(cfg.Logging.Level, cfg.Logging.Format, a.stderr)
	return nil
}
