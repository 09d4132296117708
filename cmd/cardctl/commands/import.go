package commands

import (
	"fmt"
	"os"

	"github.com/benvon/card-collection/internal/config"
	"github.com/benvon/card-collection/internal/database"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection-file>...",
		Short: "Store collection files in the database",
		Long:  "Validate collection files and upsert them into the database named by DATABASE_URL, replacing their cards.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			ctx := cmd.Context()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			repo := database.NewCollectionRepository(db)

			for _, path := range args {
				c, err := loadCollection(path)
				if err != nil {
					return err
				}
				if err := repo.Save(ctx, c); err != nil {
					return fmt.Errorf("failed to save collection %s: %w", c.ID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d cards)\n", c.ID, len(c.Cards))
			}
			return nil
		},
	}
}
