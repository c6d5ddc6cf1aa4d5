package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complytime/complybeacon/evidencekit/evidence"
)

// newTestCommand returns a configured command that records the values of its
// flags when run.
func newTestCommand(aliases map[string]string) (*cobra.Command, map[string]string) {
	seen := make(map[string]string)
	cmd := &cobra.Command{
		Use:  "test",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"output", "hostname", FlagLogLevel, FlagOTelEndpoint} {
				v, err := cmd.Flags().GetString(name)
				if err != nil {
					return err
				}
				seen[name] = v
			}
			return nil
		},
	}
	cmd.Flags().String("output", "default.json", "output file")
	cmd.Flags().String("hostname", "", "host name")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return Configure(cmd, aliases), seen
}

func TestConfigureDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd, seen := newTestCommand(nil)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "default.json", seen["output"])
	assert.Equal(t, "info", seen[FlagLogLevel])
	assert.Empty(t, seen[FlagOTelEndpoint])
	assert.Equal(t, Version, cmd.Version)
}

func TestConfigurePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		args     []string
		config   string
		aliases  map[string]string
		flag     string
		expected string
	}{
		{
			name:     "prefixed environment variable",
			env:      map[string]string{"EVIDENCEKIT_OUTPUT": "env.json"},
			flag:     "output",
			expected: "env.json",
		},
		{
			name:     "dashes become underscores",
			env:      map[string]string{"EVIDENCEKIT_OTEL_ENDPOINT": "collector:4317"},
			flag:     FlagOTelEndpoint,
			expected: "collector:4317",
		},
		{
			name:     "flag wins over environment",
			env:      map[string]string{"EVIDENCEKIT_OUTPUT": "env.json"},
			args:     []string{"--output", "flag.json"},
			flag:     "output",
			expected: "flag.json",
		},
		{
			name:     "alias environment variable",
			env:      map[string]string{"TARGET_HOST": "rhel9-a.example.com"},
			aliases:  map[string]string{"hostname": "TARGET_HOST"},
			flag:     "hostname",
			expected: "rhel9-a.example.com",
		},
		{
			name:     "prefixed variable wins over alias",
			env:      map[string]string{"TARGET_HOST": "alias", "EVIDENCEKIT_HOSTNAME": "prefixed"},
			aliases:  map[string]string{"hostname": "TARGET_HOST"},
			flag:     "hostname",
			expected: "prefixed",
		},
		{
			name:     "config file",
			config:   "output: config.json\nlogLevel: debug\n",
			flag:     "output",
			expected: "config.json",
		},
		{
			name:     "environment wins over config file",
			env:      map[string]string{"EVIDENCEKIT_OUTPUT": "env.json"},
			config:   "output: config.json\n",
			flag:     "output",
			expected: "env.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.config != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".evidencekit.yaml"), []byte(tt.config), 0o600))
			}

			cmd, seen := newTestCommand(tt.aliases)
			cmd.SetArgs(append([]string{}, tt.args...))
			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.expected, seen[tt.flag])
		})
	}
}

func TestConfigureExplicitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: explicit.json\n"), 0o600))

	cmd, seen := newTestCommand(nil)
	cmd.SetArgs([]string{"--config", path})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "explicit.json", seen["output"])

	missing, _ := newTestCommand(nil)
	missing.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, missing.Execute())
}

func TestConfigureRejectsArguments(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd, _ := newTestCommand(nil)
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetArgs([]string{"unexpected"})

	assert.Error(t, cmd.Execute())
	assert.Contains(t, output.String(), "Usage:")
}

func TestConfigureRequiredFlags(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		expectErr   bool
		expectUsage bool
	}{
		{name: "missing", args: []string{}, expectErr: true, expectUsage: true},
		{name: "from flag", args: []string{"--hostname", "rhel9-a"}},
		{name: "from environment", env: map[string]string{"EVIDENCEKIT_HOSTNAME": "rhel9-b"}, args: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cmd, _ := newTestCommand(nil)
			require.NoError(t, cmd.MarkFlagRequired("hostname"))
			output := &bytes.Buffer{}
			cmd.SetOut(output)
			cmd.SetErr(output)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "required flag")
			} else {
				require.NoError(t, err)
			}
			if tt.expectUsage {
				assert.Contains(t, output.String(), "Usage:")
			} else {
				assert.NotContains(t, output.String(), "Usage:")
			}
		})
	}
}

func TestConfigureRunErrorIsNotUsageError(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd, _ := newTestCommand(nil)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return assert.AnError
	}
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetArgs([]string{})

	assert.ErrorIs(t, cmd.Execute(), assert.AnError)
	assert.NotContains(t, output.String(), "Usage:")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "verbose", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestInitLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	InitLogger(&buf, slog.LevelWarn)
	slog.Info("hidden")
	slog.Warn("shown", "check", "fips_mode_enabled")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "fips_mode_enabled")
}

func TestTelemetryWithoutEndpoint(t *testing.T) {
	cmd := Configure(&cobra.Command{Use: "test"}, nil)
	require.NoError(t, cmd.ParseFlags(nil))

	telemetry, err := StartTelemetry(context.Background(), cmd, "test")
	require.NoError(t, err)
	require.NotNil(t, telemetry.Observer)

	report := evidence.NewReport(evidence.TypeOpenShiftRuntime)
	report.Add(evidence.Record{CheckID: "fips_mode_enabled", Pass: true, Details: "ok"})
	assert.NoError(t, telemetry.Export(context.Background(), report))
	assert.NoError(t, telemetry.Shutdown(context.Background()))
}
