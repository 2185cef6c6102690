package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/texstack/runtime/config"
)

const defaultHistoryFile = ".texstack_history"

func newReplCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [document]",
		Short: "Edit a document interactively",
		Long: `Read command strings such as "push_text x;push_text 2;superscript" and
apply each line as one batch. Lines starting with ':' are directives:

  :key KEY...        press keys through the keymap
  :engine FN [N]     apply an algebra engine function to N stack items
  :save [FILE]       write the document
  :load FILE         read a document, forgetting undo history
  :render            print the document as LaTeX
  :stack             print the stack
  :quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.loadSettings()
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runRepl(cmd.Context(), flags, settings, path)
		},
	}
}

func runRepl(ctx context.Context, flags *globalFlags, settings config.Settings, path string) error {
	useColor := flags.useColor()
	s, err := newSession(settings, os.Stdout, os.Stderr, useColor)
	if err != nil {
		return err
	}
	if path != "" {
		if err := s.open(path); err != nil {
			return err
		}
	}

	if _, err := os.Stat(flags.configPath); flags.configPath != "" && err == nil {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := config.Watch(watchCtx, flags.configPath, func(updated config.Settings, err error) {
			if err == nil {
				keys, kerr := updated.LoadKeymap()
				if kerr == nil {
					s.keys.Store(keys)
					return
				}
				err = kerr
			}
			FormatError(os.Stderr, err, useColor)
		}); err != nil {
			FormatError(os.Stderr, err, useColor)
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	historyPath := historyFile(settings)
	if f, err := os.Open(historyPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	FormatState(os.Stdout, s.interp, s.state, useColor)
	for {
		line, err := ln.Prompt(prompt(s))
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		quit, err := s.exec(ctx, line)
		if err != nil {
			FormatError(os.Stderr, err, useColor)
			continue
		}
		if quit {
			return nil
		}
		FormatState(os.Stdout, s.interp, s.state, useColor)
	}
}

func prompt(s *session) string {
	mark := "> "
	if s.state.Dirty {
		mark = "*> "
	}
	return string(s.interp.Mode()) + mark
}

func historyFile(settings config.Settings) string {
	if settings.HistoryFile != "" {
		return settings.HistoryFile
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultHistoryFile)
}
