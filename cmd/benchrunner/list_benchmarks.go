// cmd/benchrunner/list_benchmarks.go
package benchrunner

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchrunner/internal/assertion"
	"github.com/mwiater/benchrunner/internal/definition"
)

// benchmarksCmd implements 'list benchmarks', which resolves the
// definitions at path without running anything.
var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks [path]",
	Short: "List the subjects and variants a run would execute",
	Long:  `The 'benchmarks' subcommand loads and validates the benchmark definitions at path and prints every subject with its variant count and groups. Invalid definitions fail exactly as they would for 'run'.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settings.Path
		if len(args) > 0 {
			path = args[0]
		}
		files, err := definition.Load(path)
		if err != nil {
			return err
		}
		benchmarks, err := definition.Resolve(files, definition.Options{Registry: assertion.NewRegistry()})
		if err != nil {
			return err
		}
		listBenchmarks(cmd.OutOrStdout(), benchmarks)
		return nil
	},
}

func init() {
	listCmd.AddCommand(benchmarksCmd)
}

// listBenchmarks prints one "Class::subject  N variants  [groups]" line
// per subject, padded into columns.
func listBenchmarks(w io.Writer, benchmarks []*definition.Benchmark) {
	type row struct{ name, variants, groups string }
	var rows []row
	width := 0
	for _, b := range benchmarks {
		for _, s := range b.Subjects {
			r := row{
				name:     b.Class + "::" + s.Name,
				variants: fmt.Sprintf("%d variants", s.VariantCount()),
			}
			if len(s.Groups) > 0 {
				r.groups = "[" + strings.Join(s.Groups, ", ") + "]"
			}
			width = max(width, len(r.name))
			rows = append(rows, r)
		}
	}

	fmt.Fprintln(w, "Benchmarks:")
	for _, r := range rows {
		line := fmt.Sprintf("  %s%s%s", r.name, strings.Repeat(" ", width-len(r.name)+2), r.variants)
		if r.groups != "" {
			line += "  " + r.groups
		}
		fmt.Fprintln(w, line)
	}
}
