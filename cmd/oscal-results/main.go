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
	"go.opentelemetry.io/otel/attribute"

	"github.com/complytime/complybeacon/evidencekit/ansible"
	"github.com/complytime/complybeacon/evidencekit/evidence"
	"github.com/complytime/complybeacon/evidencekit/internal/artifact"
	"github.com/complytime/complybeacon/evidencekit/internal/cli"
	"github.com/complytime/complybeacon/evidencekit/oscal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newCommand()
	cmd.SetContext(ctx)
	cli.Execute(cmd)
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oscal-results",
		Short: "Generate OSCAL Assessment Results from an Ansible check report",
		Long: `Generate OSCAL Assessment Results from an Ansible check mode report.

Tasks of the first play tagged with a control identifier become observations
and findings. A task that would have changed the host also opens a risk linked
to a POA&M placeholder in the back-matter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reportPath, _ := cmd.Flags().GetString("report")
			planPath, _ := cmd.Flags().GetString("plan")
			output, _ := cmd.Flags().GetString("output")
			return run(cmd, reportPath, planPath, output)
		},
	}
	cmd.Flags().String("report", "", "Path to the Ansible check mode report in JSON format")
	cmd.Flags().String("plan", "", "Path to the OSCAL Assessment Plan in JSON or YAML format")
	cmd.Flags().String("output", "", "Path to write the OSCAL Assessment Results JSON file")
	for _, name := range []string{"report", "plan", "output"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	return cli.Configure(cmd, nil)
}

func run(cmd *cobra.Command, reportPath, planPath, output string) (err error) {
	ctx := cmd.Context()
	telemetry, err := cli.StartTelemetry(ctx, cmd, "oscal-results")
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, telemetry.Shutdown(ctx))
	}()

	slog.Info("loading Ansible report", "path", reportPath)
	report, err := ansible.Load(reportPath)
	if err != nil {
		return err
	}

	slog.Info("loading OSCAL Assessment Plan", "path", planPath)
	plan, err := oscal.LoadPlan(planPath)
	if err != nil {
		return err
	}

	doc, err := oscal.NewAssembler(oscal.WithLogger(slog.Default())).Assemble(report, plan)
	if err != nil {
		return err
	}
	if err := artifact.WriteJSON(output, doc); err != nil {
		return err
	}

	result := doc.AssessmentResults.Results[0]
	for _, f := range result.Findings {
		telemetry.Observer.Recorded(ctx,
			attribute.String(evidence.COMPLIANCE_CONTROL_ID, f.Target.TargetID),
			attribute.String(evidence.COMPLIANCE_ASSESSMENT_ID, result.UUID),
			attribute.String("finding.state", f.Target.Status.State))
	}
	slog.Info("assessment results generated",
		"findings", len(result.Findings),
		"risks", len(result.Risks))
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully generated OSCAL Assessment Results at: %s\n", output)
	return nil
}
