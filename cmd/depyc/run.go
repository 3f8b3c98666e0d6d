package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"depyc/internal/rules"
	"depyc/marshal"
)

// processFile loads input, walks it against the rules file at
// opts.rulesPath, and persists the result to output, one pass.
func processFile(log zerolog.Logger, opts *options, input, output string) (int, error) {
	raw, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			return exitInputMissing, fmt.Errorf("input missing: %s", input)
		}
		return exitInputMissing, err
	}

	if !opts.force {
		if _, err := os.Stat(output); err == nil {
			return exitOutputExists, fmt.Errorf("output exists (use --force): %s", output)
		}
	}

	set, err := rules.Load(opts.rulesPath)
	if err != nil {
		return exitRulesFileMissing, fmt.Errorf("loading rules file %s: %w", opts.rulesPath, err)
	}

	result, err := marshal.Walk(raw, set)
	if err != nil {
		return exitCodeFor(err), err
	}

	if err := os.WriteFile(output, result.Output, 0o644); err != nil {
		return exitBadFlagValue, err
	}

	if !opts.silent {
		log.Info().Str("input", input).Str("output", output).
			Int("bytes", len(result.Output)).Msg("rewritten")
	}
	return exitOK, nil
}

// exitCodeFor maps a fatal marshal.Error Kind to its process exit code
// (spec.md §6/§7). A non-marshal error (e.g. a header the rules adapter
// could not parse) falls back
// to the generic bad-flag-value code since it did not originate in the
// core's own fatal-kind taxonomy.
func exitCodeFor(err error) int {
	var merr *marshal.Error
	if !errors.As(err, &merr) {
		return exitBadFlagValue
	}
	switch merr.Kind {
	case marshal.KindIncompatible:
		return exitIncompatibleInput
	case marshal.KindUnknownTypeCode:
		return exitUnexpectedTypeCode
	case marshal.KindMalformedLong:
		return exitBadLongTypeCode
	case marshal.KindAborted:
		return exitUnexpectedTypeCode
	default:
		return exitBadFlagValue
	}
}

func newLogger(opts *options) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.silent {
		level = zerolog.Disabled
	} else if opts.debug > 0 {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: opts.silent}).
		Level(level).
		With().Timestamp().Logger()
}
