package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benvon/card-collection/internal/config"
	"github.com/benvon/card-collection/internal/queue"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var collectionID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print session transition events as the worker publishes them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.RabbitMQURL == "" {
				return fmt.Errorf("RABBITMQ_URL is required")
			}

			subscriber, err := queue.NewRabbitMQPublisher(cfg.RabbitMQURL)
			if err != nil {
				return err
			}
			defer func() {
				if err := subscriber.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ connection: %v\n", err)
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			events, errs, err := subscriber.Subscribe(ctx)
			if err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				case event, ok := <-events:
					if !ok {
						return nil
					}
					if collectionID != "" && event.CollectionID != collectionID {
						continue
					}
					if err := writeJSON(cmd.OutOrStdout(), event); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&collectionID, "collection", "", "only print events for this collection id")
	return cmd
}
