/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hbnb/apiserver/internal/mq"
	"github.com/hbnb/apiserver/types"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the entity event stream",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log entity events as they are published",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Connect(ctx, cfg.Events)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("events are disabled: set EVENTS_BACKEND")
		}
		bus := mq.NewEventBus(queue, cfg.Events.Channel)
		defer bus.Close()

		logger.Info("tailing entity events",
			zap.String("backend", cfg.Events.Backend),
			zap.String("channel", bus.Channel()),
		)
		err = bus.SubscribeEntityEvents(ctx, func(_ context.Context, event types.EntityEvent) error {
			logger.Info("entity event",
				zap.String("kind", event.Kind),
				zap.String("action", string(event.Action)),
				zap.String("entity_id", event.EntityID),
				zap.String("actor_id", event.ActorID),
				zap.Time("occurred_at", event.OccurredAt),
			)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
