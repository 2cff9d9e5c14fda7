// cmd/benchrunner/config.go
package benchrunner

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// configCmd groups configuration related subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Group commands for inspecting the configuration",
	Long:  `The 'config' command groups subcommands that inspect the resolved configuration. It performs no action on its own.`,
}

// configShowCmd pretty prints the settings resolved from defaults, the
// config file, .env, BENCHRUNNER_* variables and flags.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long:  `The 'show' subcommand prints the configuration every other command would use, after defaults, the config file, .env, BENCHRUNNER_* environment variables and flags were applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := pp.Fprintln(cmd.OutOrStdout(), settings)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
