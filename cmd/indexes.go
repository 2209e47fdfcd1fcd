package cmd

import (
	"errors"
	"fmt"

	"github.com/gogotex/gogotex/backend/user-sync/internal/config"
	"github.com/gogotex/gogotex/backend/user-sync/internal/database"
	"github.com/gogotex/gogotex/backend/user-sync/internal/users"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/logger"
	"github.com/spf13/cobra"
)

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the unique indexes of the users collection and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.MongoDB.URI == "" {
			return errors.New("MONGODB_URI is required")
		}
		ctx := cmd.Context()
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(ctx) }()

		col := client.Database(cfg.MongoDB.Database).Collection("users")
		if err := users.NewMongoUserRepository(col).EnsureIndexes(ctx); err != nil {
			return err
		}
		logger.Infof("indexes ensured on %s.users: %v", cfg.MongoDB.Database, users.UserSchema().UniqueKeys())
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}
