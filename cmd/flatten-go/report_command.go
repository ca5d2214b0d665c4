package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flatten-go/internal/report"
)

func newReportCommand() *cobra.Command {
	var showMoves bool

	cmd := &cobra.Command{
		Use:   "report <report.json>",
		Short: "Summarise a saved run report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load report: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s on %s\n", r.RunID, r.Root)
			fmt.Fprintf(out, "  %s\n", r.Summary())
			if v := r.Verification; v != nil {
				fmt.Fprintf(out, "  Verified: %t (%d files, %s, root %s)\n", v.Verified, v.Files, v.Size, v.After)
			}
			if showMoves {
				for _, m := range r.Moves {
					fmt.Fprintf(out, "  %s → %s\n", m.Source, m.Dest)
				}
				for _, d := range r.Deleted {
					fmt.Fprintf(out, "  deleted %s\n", d)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMoves, "moves", false, "List every move and deletion")
	return cmd
}
