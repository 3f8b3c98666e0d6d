// Command depyc rewrites a CPython .pyc marshal stream according to a
// declarative rules file: type-code substitutions, opcode substitutions,
// and optional header repair, without re-serializing the object graph.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Exit codes, spec.md §6.
const (
	exitOK                 = 0
	exitInputMissing       = 1
	exitOutputExists       = 2
	exitMissingInputArg    = 3
	exitMissingOutputArg   = 4
	exitBadFlagValue       = 5
	exitRulesFileMissing   = 6
	exitIncompatibleInput  = 7
	exitUnexpectedTypeCode = 8
	exitBadDebugValue      = 9
	exitBadLongTypeCode    = 11
)

type options struct {
	rulesPath string
	force     bool
	silent    bool
	debug     int
	watch     string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts := &options{}
	code := exitOK
	exited := false

	root := &cobra.Command{
		Use:           "depyc <input.pyc> <output.pyc>",
		Short:         "Rewrite a CPython .pyc marshal stream via a declarative rules file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				code, exited = exitMissingInputArg, true
				return errors.New("missing <input.pyc>")
			}
			if len(args) < 2 {
				code, exited = exitMissingOutputArg, true
				return errors.New("missing <output.pyc>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(opts)
			c, err := runOnce(log, opts, args[0], args[1])
			code = c
			return err
		},
	}

	root.Flags().StringVar(&opts.rulesPath, "rules", "./default.pycrules", "path to the rules file")
	root.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing output file")
	root.Flags().BoolVar(&opts.silent, "silent", false, "suppress progress output")
	root.Flags().IntVar(&opts.debug, "debug", 0, "debug verbosity level (0 disables)")
	root.Flags().StringVar(&opts.watch, "watch", "", "re-run on every change to <input.pyc>, then execute this command")

	if args == nil {
		args = []string{} // cobra would otherwise fall back to os.Args
	}
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if exited {
			return code
		}
		if code == exitOK {
			code = exitBadFlagValue
		}
		fmt.Fprintln(os.Stderr, color.RedString("depyc: %v", err))
		return code
	}
	return code
}

// runOnce loads, walks, and persists a single input/output pair, honoring
// --watch by handing the re-run loop to watch.go instead of returning.
func runOnce(log zerolog.Logger, opts *options, input, output string) (int, error) {
	if opts.debug < 0 {
		return exitBadDebugValue, fmt.Errorf("bad --debug value %d", opts.debug)
	}

	if opts.watch != "" {
		return watchAndRun(log, opts, input, output)
	}

	return processFile(log, opts, input, output)
}
