// cmd/benchrunner/root.go
package benchrunner

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mwiater/benchrunner/internal/config"
)

// Version is written on the root element of dumped suite documents.
var Version = "0.1.0"

var (
	cfgFile  string
	settings config.Settings
	logger   = slog.Default()
)

// flagKeys maps flag names to the configuration keys they override.
var flagKeys = map[string]string{
	"context":       config.KeyContext,
	"progress":      config.KeyProgress,
	"parallel":      config.KeyParallel,
	"timeout":       config.KeyTimeout,
	"retry-limit":   config.KeyRetryLimit,
	"stop-on-error": config.KeyStopOnError,
	"dump-file":     config.KeyDumpFile,
	"metrics-file":  config.KeyMetricsFile,
	"report":        config.KeyReports,
	"env":           config.KeyEnv,
	"verbose":       config.KeyVerbose,
}

// rootCmd is the base Cobra command for the benchrunner application.
// All subcommands are attached to this root to form the complete CLI.
var rootCmd = &cobra.Command{
	Use:   "benchrunner",
	Short: "Run benchmarks in isolated processes and assert on their stats",
	Long: `benchrunner runs benchmark subjects declared in *.bench.yaml files. Every
iteration runs in its own child process, results are aggregated into a
suite, checked against assertions and optionally dumped as XML for later
reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root Cobra command and all registered subcommands.
// It prints any returned error and exits the process with a non-zero
// status code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./benchrunner.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug records to stderr")
}

// initConfig loads the configuration, binds the flags of cmd on top of it
// and builds the logger.
func initConfig(cmd *cobra.Command) error {
	v, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	s, err := config.Decode(v)
	if err != nil {
		return err
	}
	settings = s
	logger = config.NewLogger(cmd.ErrOrStderr(), s.Verbose)
	if s.ConfigFile != "" {
		logger.Debug("using config file", "path", s.ConfigFile)
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}
