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

	"github.com/complytime/complybeacon/evidencekit/ansible"
	"github.com/complytime/complybeacon/evidencekit/internal/artifact"
	"github.com/complytime/complybeacon/evidencekit/internal/cli"
)

const defaultOutput = "rhel9_runtime_evidence.json"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newCommand()
	cmd.SetContext(ctx)
	cli.Execute(cmd)
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ansible-evidence <path_to_ansible_report.json>",
		Short: "Translate an Ansible check mode report into runtime evidence",
		Long: `Translate the JSON report of 'ansible-playbook --check' into runtime evidence.

Every task tagged with a control identifier (as its first tag) becomes one
record. A task that would have changed the host is reported as drift.
The assessed host is taken from --hostname or the TARGET_HOST environment
variable.`,
		Example: `  ansible-playbook site.yaml --check -o > ansible-check-report.json
  TARGET_HOST=rhel9-a.example.com ansible-evidence ansible-check-report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			hostname, _ := cmd.Flags().GetString("hostname")
			return run(cmd, args[0], hostname, output)
		},
	}
	cmd.Flags().StringP("output", "o", defaultOutput, "File the evidence report is written to")
	cmd.Flags().String("hostname", ansible.DefaultHostname, "Name of the assessed host")
	return cli.Configure(cmd, map[string]string{"hostname": ansible.HostnameEnv})
}

func run(cmd *cobra.Command, reportPath, hostname, output string) (err error) {
	ctx := cmd.Context()
	telemetry, err := cli.StartTelemetry(ctx, cmd, "ansible-evidence")
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, telemetry.Shutdown(ctx))
	}()

	slog.Info("parsing Ansible report", "path", reportPath)
	report, err := ansible.Load(reportPath)
	if err != nil {
		return err
	}

	parser := ansible.NewParser(
		ansible.WithLogger(slog.Default()),
		ansible.WithObserver(telemetry.Observer),
	)
	records, err := parser.Evidence(ctx, report)
	if err != nil {
		return err
	}

	evidenceReport := ansible.NewEvidenceReport(records, hostname)
	if err := artifact.WriteJSON(output, evidenceReport); err != nil {
		return err
	}
	passed, failed := evidenceReport.Summary()
	slog.Info("tasks evaluated", "host", evidenceReport.Hostname, "passed", passed, "failed", failed)

	if err := telemetry.Export(ctx, evidenceReport); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Evidence collection complete. Report saved to '%s'.\n", output)
	return nil
}
