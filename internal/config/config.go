// internal/config/config.go
// Package: config
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mwiater/benchrunner/internal/env"
	"github.com/mwiater/benchrunner/internal/harness"
	"github.com/mwiater/benchrunner/internal/progress"
	"github.com/mwiater/benchrunner/internal/report"
)

// Configuration keys. Flags are bound to the same keys, environment
// variables are the upper-cased key prefixed with BENCHRUNNER_.
const (
	KeyPath        = "path"
	KeyContext     = "context"
	KeyProgress    = "progress"
	KeyParallel    = "parallel"
	KeyTimeout     = "timeout"
	KeyRetryLimit  = "retry_limit"
	KeyStopOnError = "stop_on_error"
	KeyDumpFile    = "dump_file"
	KeyMetricsFile = "metrics_file"
	KeyReports     = "reports"
	KeyEnv         = "env"
	KeyVerbose     = "verbose"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BENCHRUNNER"

// Settings is the resolved configuration shared by all commands.
type Settings struct {
	Path        string        `mapstructure:"path"`
	Context     string        `mapstructure:"context"`
	Progress    string        `mapstructure:"progress" validate:"required"`
	Parallel    int           `mapstructure:"parallel" validate:"gte=1"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RetryLimit  int           `mapstructure:"retry_limit" validate:"gte=1"`
	StopOnError bool          `mapstructure:"stop_on_error"`
	DumpFile    string        `mapstructure:"dump_file"`
	MetricsFile string        `mapstructure:"metrics_file"`
	Reports     []string      `mapstructure:"reports"`
	Env         []string      `mapstructure:"env"`
	Verbose     bool          `mapstructure:"verbose"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPath, ".")
	v.SetDefault(KeyContext, "")
	v.SetDefault(KeyProgress, progress.DefaultLogger)
	v.SetDefault(KeyParallel, 1)
	v.SetDefault(KeyTimeout, harness.DefaultTimeout)
	v.SetDefault(KeyRetryLimit, harness.DefaultRetryLimit)
	v.SetDefault(KeyStopOnError, false)
	v.SetDefault(KeyDumpFile, "")
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyReports, []string{})
	v.SetDefault(KeyEnv, env.DefaultProviders)
	v.SetDefault(KeyVerbose, false)
}

// Load reads .env, the configuration file and BENCHRUNNER_* variables
// into a new viper instance. Without cfgFile, benchrunner.yaml in the
// working directory is used when it exists.
func Load(cfgFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("benchrunner")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Decode resolves v into validated settings.
func Decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	s.ConfigFile = v.ConfigFileUsed()
	if err := validate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	if !slices.Contains(progress.Names(), s.Progress) {
		return Settings{}, fmt.Errorf("invalid config: unknown progress logger %q (available: %v)", s.Progress, progress.Names())
	}
	for _, r := range s.Reports {
		if !slices.Contains(report.NewManager().Names(), r) {
			return Settings{}, fmt.Errorf("invalid config: %w %q", report.ErrUnknownReport, r)
		}
	}
	return s, nil
}

// NewLogger returns the structured logger of the CLI: text records on w,
// warnings and above unless verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
