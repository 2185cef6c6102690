package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/texstack/core/docfmt"
	"github.com/aledsdavies/texstack/core/render"
)

func newRenderCommand(_ *globalFlags) *cobra.Command {
	var (
		standalone bool
		output     string
	)

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Print a document as LaTeX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := docfmt.LoadFile(args[0])
			if err != nil {
				return err
			}
			latex := render.Document(s.Document) + "\n"
			if standalone {
				latex = render.Standalone(s.Document)
			}
			if output == "" || output == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), latex)
				return err
			}
			if err := os.WriteFile(output, []byte(latex), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&standalone, "standalone", "s", false, "Wrap the body in a compilable LaTeX file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
