package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codecrest/codecrest_backend/internal/repo"
	"github.com/codecrest/codecrest_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the contact collection indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			dbCfg := database.FromCentralConfig(cfg.Mongo)
			client, err := database.NewMongoClientFromConfig(dbCfg)
			if err != nil {
				return fmt.Errorf("failed to create mongo client: %w", err)
			}
			defer client.Disconnect(context.Background())

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = 30 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := database.Ping(ctx, client, dbCfg); err != nil {
				return err
			}

			fmt.Printf("Ensuring indexes on %s.%s\n", dbCfg.Database, dbCfg.Collection)
			store := repo.NewContactStore(database.Collection(client, dbCfg), dbCfg.OperationTimeout())
			if err := store.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
