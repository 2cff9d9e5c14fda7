// cmd/benchrunner/list.go
package benchrunner

import (
	"github.com/spf13/cobra"
)

// listCmd groups 'list benchmarks' and 'list commands'.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List benchmark subjects or CLI commands",
	Long: `The 'list' command groups the read-only listings of benchrunner:
'list benchmarks' resolves definition files and prints every subject with
its variant count and groups without running anything, and 'list commands'
prints the command tree. It does nothing on its own.`,
}

func init() {
	rootCmd.AddCommand(listCmd)
}
