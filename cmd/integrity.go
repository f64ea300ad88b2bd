package cmd

import (
	"fmt"

	"compliance-engine/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on storage and database",
	Long:  `Checks the rule set folder in the storage bucket and the database schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, true, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the ledger and inventory tables against their models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, schemaCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Fix missing folders")
}

func runIntegrityChecks(cmd *cobra.Command, runStructure, runSchema bool) error {
	ctx := cmd.Context()
	// The schema is inspected as found, not migrated first.
	rt, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer rt.close()
	logg := rt.logger

	svc := integrity.NewService(rt.client, rt.cfg.Storage.Bucket, rt.cfg.Engine.RulesPrefix, rt.db, logg)

	if runStructure {
		logg.Info("Checking folder structure...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			if fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed successfully.")
			} else {
				logg.Info("Run with --fix to create missing folders.")
			}
		}
	}

	if runSchema {
		logg.Info("Checking database schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Database schema matches the models.")
			return nil
		}
		for table, tbl := range report.Tables {
			if tbl.Status == "ok" {
				continue
			}
			if tbl.Missing {
				logg.Warn("Missing table", zap.String("table", table))
			}
			if len(tbl.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
			}
			if len(tbl.TypeMismatches) > 0 {
				logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
			}
		}
		for _, e := range report.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}
		return fmt.Errorf("database schema drift detected")
	}
	return nil
}
