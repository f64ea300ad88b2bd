package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reclaimCmd deletes ledger records of objects that no longer exist.
var reclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Delete ledger records whose object no longer exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.close()

		deleted, err := rt.service.Reclaim(cmd.Context())
		if err != nil {
			return fmt.Errorf("orphan reclamation failed: %w", err)
		}
		rt.logger.Info("Orphaned records deleted", zap.Int("deleted", deleted))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(reclaimCmd)
}
