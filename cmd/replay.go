package cmd

import (
	"context"
	"fmt"

	"github.com/gogotex/gogotex/backend/user-sync/internal/archive"
	"github.com/gogotex/gogotex/backend/user-sync/internal/clerk"
	"github.com/gogotex/gogotex/backend/user-sync/internal/config"
	"github.com/gogotex/gogotex/backend/user-sync/internal/usersync"
	"github.com/spf13/cobra"
)

var replayKey string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-apply an archived webhook payload to the user store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if !cfg.MinIO.Enabled() {
			return fmt.Errorf("replay needs the payload archive: set MINIO_ENDPOINT")
		}
		svc, err := buildServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		res, err := replay(cmd.Context(), svc.archive, svc.syncer, replayKey)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", replayKey, res.Outcome)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayKey, "key", "", "archive object key, e.g. clerk/2024/03/01/msg_123.json")
	_ = replayCmd.MarkFlagRequired("key")
}

// replay loads an archived body and applies it. Archived bodies were verified
// on receipt, so no signature is checked here.
func replay(ctx context.Context, store archive.Archiver, syncer *usersync.Syncer, key string) (usersync.Result, error) {
	body, err := store.Get(ctx, key)
	if err != nil {
		return usersync.Result{}, fmt.Errorf("load %s: %w", key, err)
	}
	evt, err := clerk.ParseEvent(body)
	if err != nil {
		return usersync.Result{}, err
	}
	return syncer.Apply(usersync.ContextWithDeliveryID(ctx, archive.DeliveryID(key)), evt)
}
