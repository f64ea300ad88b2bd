package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rulesCmd is the parent command for rule catalog operations.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and publish compliance rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tENFORCE\tSOURCE\tNAME")
		for _, r := range rt.service.Rules() {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", r.ID, r.Kind, r.Enforce, r.Source, r.Name)
		}
		return w.Flush()
	},
}

var rulesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reload every rule provider and report failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.service.SyncRules(cmd.Context()); err != nil {
			return fmt.Errorf("rule sync failed: %w", err)
		}
		rt.logger.Info("Rules synced", zap.Int("rules", len(rt.service.Rules())))
		return nil
	},
}

var rulesPushCmd = &cobra.Command{
	Use:   "push <file>...",
	Short: "Validate rule files and upload them to the object store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.close()

		if rt.remote == nil {
			return errors.New("remote rules are disabled (ENGINE_DYNAMIC_RULES=false)")
		}

		for _, file := range args {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			key, err := rt.remote.Publish(cmd.Context(), filepath.Base(file), data)
			if err != nil {
				return err
			}
			rt.logger.Info("Rule file uploaded", zap.String("file", file), zap.String("key", key))
		}
		return rt.service.SyncRules(cmd.Context())
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd, rulesSyncCmd, rulesPushCmd)
	RootCmd.AddCommand(rulesCmd)
}
