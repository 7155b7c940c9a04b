package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/postcss-go/processor"
)

// printWarnings writes each warning to stderr in human-readable form.
func printWarnings(cmd *cobra.Command, warnings []processor.Message) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
