package system

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codecrest/codecrest_backend/pkg/database"
)

func NewPingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured MongoDB answers",
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

			if err := database.Ping(cmd.Context(), client, dbCfg); err != nil {
				return err
			}
			fmt.Printf("MongoDB reachable (database %q).\n", dbCfg.Database)
			return nil
		},
	}

	return cmd
}
