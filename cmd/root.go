// Package cmd implements the pcss CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root pcss command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pcss",
		Short:         "pcss - transform CSS with a pipeline of plugins",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.AddCommand(NewParseCmd(newDefaultParseReader()))
	root.AddCommand(NewProcessCmd(newDefaultProcessIO()))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// emitError writes a human-readable error to stderr and returns a non-nil
// error so the caller exits with non-zero code.
func emitError(cmd *cobra.Command, what string, origErr error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", origErr)
	return fmt.Errorf("%s: %w", what, origErr)
}
