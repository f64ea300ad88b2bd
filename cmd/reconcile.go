package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"compliance-engine/core/compliance"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileRules []string
	reconcileJSON  bool
)

// reconcileCmd runs a reconciliation job over the selected rules.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Audit every object against the selected rules and update the ledger",
	Long: `Runs every selected rule over its kind's population and converges the
compliance ledger to the audit results. Without --rule every rule runs.

Examples:
  # Reconcile every rule
  reconcile

  # Reconcile two rules with more workers
  reconcile --rule device-naming --rule device-asset-tag --workers 16`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringSliceVar(&reconcileRules, "rule", nil, "Rule id to reconcile (repeatable)")
	reconcileCmd.Flags().Int("workers", 0, "Override ENGINE_WORKERS")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Print the full run report as JSON")
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrapWithWorkers(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	report, err := rt.service.Reconcile(ctx, reconcileRules)
	if err != nil {
		return fmt.Errorf("failed to start reconciliation: %w", err)
	}

	if reconcileJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	}
	printRunReport(rt.logger, report)

	if report.Cancelled {
		return fmt.Errorf("reconciliation cancelled after %d objects", report.ObjectsProcessed)
	}
	return nil
}

// bootstrapWithWorkers applies the --workers override before wiring the engine.
func bootstrapWithWorkers(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		if err := os.Setenv("ENGINE_WORKERS", fmt.Sprint(workers)); err != nil {
			return nil, err
		}
	}
	return bootstrap(ctx, true)
}

// printRunReport logs a reconciliation summary and each failed pair.
func printRunReport(l *zap.Logger, r *compliance.RunReport) {
	l.Info("Reconciliation report",
		zap.String("run_id", r.RunID),
		zap.Strings("rules", r.Rules),
		zap.Int("objects_processed", r.ObjectsProcessed),
		zap.Int("objects_invalid", r.ObjectsInvalid),
		zap.Int("attribute_failures", r.AttributeFailures),
		zap.Int("defects", r.Defects),
		zap.Int("records_created", r.RecordsCreated),
		zap.Int("records_updated", r.RecordsUpdated),
		zap.Int("skipped", r.Skipped),
		zap.Duration("elapsed", r.FinishedAt.Sub(r.StartedAt)),
	)
	for _, f := range r.Failures {
		fields := []zap.Field{zap.String("kind", string(f.Kind)), zap.String("rule", f.RuleID), zap.String("error", f.Error)}
		if f.Object != nil {
			fields = append(fields, zap.String("object", f.Object.String()))
		}
		l.Warn("Pair failed", fields...)
	}
}
