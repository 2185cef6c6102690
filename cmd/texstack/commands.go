package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/texstack/runtime/interp"
)

func newCommandsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "commands [prefix]",
		Short: "List interpreter commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := interp.DefaultRegistry()
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			names := r.Complete(prefix)
			if len(names) == 0 {
				if s := r.Suggest(prefix); s != "" {
					return fmt.Errorf("no command starts with %q (did you mean %q?)", prefix, s)
				}
				return fmt.Errorf("no command starts with %q", prefix)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range names {
				info, _ := r.Lookup(name)
				_, _ = fmt.Fprintf(w, "%s\t%s\n", paint(info.Usage, styleCommand, flags.useColor()), info.Summary)
			}
			return w.Flush()
		},
	}
}

func newKeysCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [mode]",
		Short: "List key bindings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.loadSettings()
			if err != nil {
				return err
			}
			keys, err := settings.LoadKeymap()
			if err != nil {
				return err
			}

			tables := keys.Tables()
			if len(args) == 1 {
				tables = []string{args[0]}
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for n, table := range tables {
				bindings := keys.Bindings(table)
				if len(bindings) == 0 {
					return fmt.Errorf("no bindings for %q (tables: %s)", table, strings.Join(keys.Tables(), ", "))
				}
				if n > 0 {
					_, _ = fmt.Fprintln(w)
				}
				_, _ = fmt.Fprintf(w, "[%s]\n", paint(table, styleDepth, flags.useColor()))
				for _, b := range bindings {
					_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Key, b.Command)
				}
			}
			return w.Flush()
		},
	}
}
