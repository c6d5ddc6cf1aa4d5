// Package cli holds the command wiring shared by the evidencekit binaries.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigFilename = ".evidencekit"
	envPrefix             = "EVIDENCEKIT"
)

// Shared flag names.
const (
	FlagLogLevel     = "logLevel"
	FlagConfig       = "config"
	FlagOTelEndpoint = "otel-endpoint"
)

// Version is set via ldflags during build.
var Version = "dev"

// Configure adds the shared flags to root and loads configuration from a
// config file and the environment before any command runs. envAliases binds
// a flag to one additional, unprefixed environment variable.
func Configure(root *cobra.Command, envAliases map[string]string) *cobra.Command {
	root.Version = Version
	root.SilenceErrors = true
	root.PersistentFlags().StringP(FlagLogLevel, "l", "info", "Set the log level. Options: debug, info, warn, error")
	root.PersistentFlags().String(FlagConfig, "", "Path to a config file (default ./"+defaultConfigFilename+".yaml)")
	root.PersistentFlags().String(FlagOTelEndpoint, "", "OTLP gRPC endpoint to export evidence records and metrics to")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd, viper.New(), envAliases); err != nil {
			cmd.SilenceUsage = true
			return err
		}
		// required flags may be satisfied by the config file or environment
		if err := cmd.ValidateRequiredFlags(); err != nil {
			return err
		}
		// later errors are not usage errors
		cmd.SilenceUsage = true

		level, err := cmd.Flags().GetString(FlagLogLevel)
		if err != nil {
			return err
		}
		InitLogger(os.Stderr, ParseLevel(level))
		return nil
	}
	return root
}

// Execute runs root and exits non-zero on error.
func Execute(root *cobra.Command) {
	if err := root.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// ParseLevel maps a level name onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger sets the default logger to a tint handler writing to w.
func InitLogger(w io.Writer, level slog.Leveler) {
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func initializeConfig(cmd *cobra.Command, v *viper.Viper, envAliases map[string]string) error {
	cfgFile, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(defaultConfigFilename)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found")
	}

	v.SetEnvPrefix(envPrefix)
	// --otel-endpoint is read from EVIDENCEKIT_OTEL_ENDPOINT
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for flag, env := range envAliases {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.NewReplacer("-", "_").Replace(flag))
		if err := v.BindEnv(flag, prefixed, env); err != nil {
			return err
		}
	}

	return bindFlags(cmd, v)
}

// bindFlags applies config and environment values to every flag that was not
// set on the command line.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && v.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
			}
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
