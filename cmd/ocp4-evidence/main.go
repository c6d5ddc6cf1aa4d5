package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/complytime/complybeacon/evidencekit/cluster"
	"github.com/complytime/complybeacon/evidencekit/internal/artifact"
	"github.com/complytime/complybeacon/evidencekit/internal/cli"
)

const defaultOutput = "ocp4_runtime_evidence.json"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newCommand(cluster.CommandRunner{})
	cmd.SetContext(ctx)
	cli.Execute(cmd)
}

func newCommand(runner cluster.Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocp4-evidence",
		Short: "Collect runtime compliance evidence from an OpenShift 4 cluster",
		Long: `Collect runtime compliance evidence from an OpenShift 4 cluster.

Runs read-only 'oc get' queries against the cluster the current context points
at and writes one pass/fail record per check. A query that fails only fails the
check that issued it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			binary, _ := cmd.Flags().GetString("oc")
			checksPath, _ := cmd.Flags().GetString("checks")

			if r, ok := runner.(cluster.CommandRunner); ok {
				r.Binary = binary
				runner = r
			}
			return run(cmd, runner, checksPath, output)
		},
	}
	cmd.Flags().StringP("output", "o", defaultOutput, "File the evidence report is written to")
	cmd.Flags().String("oc", cluster.DefaultBinary, "Cluster client binary")
	cmd.Flags().String("checks", "", "YAML file replacing the built-in checks")
	return cli.Configure(cmd, nil)
}

func run(cmd *cobra.Command, runner cluster.Runner, checksPath, output string) (err error) {
	ctx := cmd.Context()
	telemetry, err := cli.StartTelemetry(ctx, cmd, "ocp4-evidence")
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, telemetry.Shutdown(ctx))
	}()

	opts := []cluster.Option{
		cluster.WithLogger(slog.Default()),
		cluster.WithObserver(telemetry.Observer),
	}
	if checksPath != "" {
		registry, err := cluster.LoadChecks(checksPath)
		if err != nil {
			return fmt.Errorf("loading checks: %w", err)
		}
		opts = append(opts, cluster.WithRegistry(registry))
	}

	slog.Info("starting OpenShift evidence collection")
	report, err := cluster.NewCollector(cluster.NewClient(runner), opts...).Collect(ctx)
	if err != nil {
		return err
	}

	if err := artifact.WriteJSON(output, report); err != nil {
		return err
	}
	passed, failed := report.Summary()
	slog.Info("checks evaluated", "cluster", report.ClusterID, "passed", passed, "failed", failed)

	if err := telemetry.Export(ctx, report); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Evidence collection complete. Report saved to '%s'.\n", output)
	return nil
}
