// cmd/benchrunner/run.go
package benchrunner

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchrunner/internal/assertion"
	"github.com/mwiater/benchrunner/internal/definition"
	"github.com/mwiater/benchrunner/internal/env"
	"github.com/mwiater/benchrunner/internal/harness"
	"github.com/mwiater/benchrunner/internal/isolation"
	"github.com/mwiater/benchrunner/internal/model"
	"github.com/mwiater/benchrunner/internal/progress"
	"github.com/mwiater/benchrunner/internal/report"
	"github.com/mwiater/benchrunner/internal/serializer"
)

// ErrRunFailed is returned when at least one variant failed or errored.
var ErrRunFailed = errors.New("benchmark run failed")

// newLauncher builds the launcher used by 'run'. Tests replace it.
var newLauncher = func() isolation.Launcher {
	return isolation.NewProcessLauncher(isolation.NewDefaultProcessManager())
}

var runFlags struct {
	filters    []string
	groups     []string
	parameters string
	revs       []int
	iterations int
	warmup     int
	asserts    []string
}

// runCmd represents the 'run' command.
var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Run benchmarks",
	Long: `The 'run' command loads the benchmark definitions at path (a file or a
directory of *.bench.yaml files), runs every matching variant in isolated
child processes and reports the outcome. It exits non-zero when any
variant failed an assertion or errored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmarks(cmd, args)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringArrayVar(&runFlags.filters, "filter", nil, "only run subjects whose Class::name matches this regex (repeatable)")
	f.StringArrayVar(&runFlags.groups, "group", nil, "only run subjects in this group (repeatable)")
	f.StringVar(&runFlags.parameters, "parameters", "", "JSON object replacing the parameter sets of every subject")
	f.IntSliceVar(&runFlags.revs, "revs", nil, "override the revolutions of every subject")
	f.IntVar(&runFlags.iterations, "iterations", 0, "override the iteration count of every subject")
	f.IntVar(&runFlags.warmup, "warmup", 0, "override the warmup count of every subject")
	f.StringArrayVar(&runFlags.asserts, "assert", nil, `assertion added to every subject, e.g. '{"stat":"mean","value":10}' (repeatable)`)
	f.StringP("progress", "l", progress.DefaultLogger, fmt.Sprintf("progress logger %v", progress.Names()))
	f.Bool("stop-on-error", false, "stop scheduling variants after the first failure or error")
	f.String("dump-file", "", "write the suite document to this file")
	f.String("metrics-file", "", "write run metrics in the Prometheus text format to this file")
	f.Int("parallel", 1, "number of variants run at once")
	f.Duration("timeout", harness.DefaultTimeout, "timeout of a single iteration")
	f.Int("retry-limit", harness.DefaultRetryLimit, "maximum re-measurements of a variant above its retry threshold")
	f.StringSlice("report", nil, "reports rendered after the run")
	f.String("context", "", "context name recorded in the suite")
	f.StringSlice("env", env.DefaultProviders, "environment providers queried before the run")
	rootCmd.AddCommand(runCmd)
}

// runOptions turns the run flags into resolution options. Malformed JSON
// fails before any definition is loaded.
func runOptions(cmd *cobra.Command) (definition.Options, error) {
	opts := definition.Options{
		Filters:    runFlags.filters,
		Groups:     runFlags.groups,
		Revs:       runFlags.revs,
		Iterations: runFlags.iterations,
		Registry:   assertion.NewRegistry(),
	}
	if cmd.Flags().Changed("warmup") {
		w := runFlags.warmup
		opts.Warmup = &w
	}
	if cmd.Flags().Changed("parameters") {
		params, err := definition.ParseParameters(runFlags.parameters)
		if err != nil {
			return definition.Options{}, err
		}
		opts.Parameters = params
	}
	for _, a := range runFlags.asserts {
		ad, err := definition.ParseAssertion(a)
		if err != nil {
			return definition.Options{}, err
		}
		opts.Assertions = append(opts.Assertions, ad)
	}
	return opts, nil
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	path := settings.Path
	if len(args) > 0 {
		path = args[0]
	}

	opts, err := runOptions(cmd)
	if err != nil {
		return err
	}
	files, err := definition.Load(path)
	if err != nil {
		return err
	}
	benchmarks, err := definition.Resolve(files, opts)
	if err != nil {
		return err
	}
	if len(benchmarks) == 0 {
		logger.Warn("no subjects matched", "path", path, "filters", opts.Filters, "groups", opts.Groups)
	}

	providers, err := env.NewRegistry(isolation.NewDefaultProcessManager()).Select(settings.Env)
	if err != nil {
		return err
	}
	pl, err := progress.New(settings.Progress, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	runner := harness.New(
		harness.WithLauncher(newLauncher()),
		harness.WithProgress(pl),
		harness.WithLogger(logger),
	)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	suite, runErr := runner.Run(ctx, harness.RunnerContext{
		ContextName:  settings.Context,
		ConfigPath:   settings.ConfigFile,
		StopOnError:  settings.StopOnError,
		Parallel:     settings.Parallel,
		RetryLimit:   settings.RetryLimit,
		Timeout:      settings.Timeout,
		EnvProviders: providers,
	}, benchmarks)

	// Artifacts are written even for interrupted runs.
	if settings.DumpFile != "" {
		if err := (serializer.XMLEncoder{Version: Version}).EncodeFile(settings.DumpFile, suite); err != nil {
			return err
		}
		logger.Info("suite dumped", "path", settings.DumpFile)
	}
	if settings.MetricsFile != "" {
		if err := runner.Metrics().WriteTextfile(settings.MetricsFile); err != nil {
			return err
		}
	}
	if len(settings.Reports) > 0 {
		if err := report.NewManager().Render(cmd.OutOrStdout(), settings.Reports, []*model.Suite{suite}); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if sum := suite.Summary(); sum.Failed+sum.Errored > 0 {
		return fmt.Errorf("%w: %d failed, %d errored", ErrRunFailed, sum.Failed, sum.Errored)
	}
	return nil
}
