package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchAndRun processes input once immediately, then re-processes it and
// executes opts.watch every time input changes on disk, until the
// watcher itself fails or the process is interrupted.
func watchAndRun(log zerolog.Logger, opts *options, input, output string) (int, error) {
	if code, err := processFile(log, opts, input, output); err != nil {
		return code, err
	}
	if err := runWatchCommand(log, opts.watch); err != nil {
		log.Error().Err(err).Str("command", opts.watch).Msg("watch command failed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return exitBadFlagValue, err
	}
	defer watcher.Close()

	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return exitInputMissing, err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return exitOK, nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(input) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if code, err := processFile(log, opts, input, output); err != nil {
				log.Error().Err(err).Msg("rewrite failed, watch continues")
				_ = code
				continue
			}
			if err := runWatchCommand(log, opts.watch); err != nil {
				log.Error().Err(err).Str("command", opts.watch).Msg("watch command failed")
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return exitOK, nil
			}
			log.Error().Err(werr).Msg("watcher error")
		}
	}
}

func runWatchCommand(log zerolog.Logger, command string) error {
	if command == "" {
		return nil
	}
	cmd := exec.Command("sh", "-c", command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
