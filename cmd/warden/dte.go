package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emenda-labs/warden/core/dte"
)

// newDTECmd wraps the diff-to-ChangeSpec proposer for local, daemon-less use:
// compare two directory trees and print the resulting diff report and any
// high-confidence patches as JSON.
func newDTECmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dte",
		Short: "Diff-to-ChangeSpec tooling",
	}
	cmd.AddCommand(newDTEDiffCmd())
	return cmd
}

func newDTEDiffCmd() *cobra.Command {
	var scopeModule string

	cmd := &cobra.Command{
		Use:   "diff <old-root> <new-root>",
		Short: "Diff exported symbols between two module trees and propose patches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldRoot, newRoot := args[0], args[1]

			report, patches, err := dte.Propose(cmd.Context(), oldRoot, newRoot, scopeModule)
			if err != nil {
				return fmt.Errorf("propose diff: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Report  interface{} `json:"report"`
				Patches interface{} `json:"patches"`
			}{Report: report, Patches: patches})
		},
	}
	cmd.Flags().StringVar(&scopeModule, "scope-module", "", "module path to scope the export scan to")

	return cmd
}
