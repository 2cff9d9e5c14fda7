// cmd/benchrunner/report.go
package benchrunner

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/benchrunner/internal/report"
)

var reportFiles []string

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render reports from dumped suite documents",
	Long: `The 'report' command loads one or more suite documents written by
'run --dump-file', aggregates them and renders the requested reports.
Suites without a name are named after their file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(reportFiles) == 0 {
			return report.ErrNoFiles
		}
		if len(settings.Reports) == 0 {
			return report.ErrNoReport
		}
		suites, err := report.LoadSuites(reportFiles)
		if err != nil {
			return err
		}
		return report.NewManager().Render(cmd.OutOrStdout(), settings.Reports, suites)
	},
}

func init() {
	reportCmd.Flags().StringArrayVar(&reportFiles, "file", nil, "suite document written by run --dump-file (repeatable)")
	reportCmd.Flags().StringSlice("report", nil, "reports to render, e.g. "+report.DefaultReport)
	rootCmd.AddCommand(reportCmd)
}
