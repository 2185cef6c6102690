package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRunCommand(flags *globalFlags) *cobra.Command {
	var (
		docPath   string
		keepGoing bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Apply a script of command lines to a document",
		Long: `Apply each line of a script as one batch, as the REPL would. The script is
read from a file, or from stdin when the argument is "-" or missing. With
--doc the document is loaded first and saved afterwards if it changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.loadSettings()
			if err != nil {
				return err
			}
			file := "-"
			if len(args) == 1 {
				file = args[0]
			}
			reader, closeFunc, err := getInputReader(file)
			if err != nil {
				return err
			}
			defer func() { _ = closeFunc() }()

			s, err := newSession(settings, cmd.OutOrStdout(), cmd.ErrOrStderr(), flags.useColor())
			if err != nil {
				return err
			}
			if docPath != "" {
				if err := s.open(docPath); err != nil {
					return err
				}
			}
			if err := runScript(cmd, s, reader, keepGoing); err != nil {
				return err
			}
			if docPath != "" && s.state.Dirty {
				if err := s.save(docPath); err != nil {
					return err
				}
			}
			if !quiet {
				FormatState(cmd.OutOrStdout(), s.interp, s.state, flags.useColor())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&docPath, "doc", "d", "", "Document file to load and save")
	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Continue after a discarded batch")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the final stack")
	return cmd
}

func runScript(cmd *cobra.Command, s *session, r io.Reader, keepGoing bool) error {
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		quit, err := s.exec(cmd.Context(), line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if s.interp.ErrorFlash() && !keepGoing {
			return fmt.Errorf("line %d: %s", lineNo, s.interp.Notification())
		}
		if quit {
			break
		}
	}
	return scanner.Err()
}

// getInputReader opens file, or returns stdin for "-".
func getInputReader(file string) (io.Reader, func() error, error) {
	if file == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file %s: %w", file, err)
	}
	return f, f.Close, nil
}
