package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"ai-research-agent/internal/config"
	"ai-research-agent/internal/service"
	"ai-research-agent/pkg/events"

	pktNats "ai-research-agent/pkg/nats"

	"github.com/spf13/cobra"
)

var (
	watchNatsURL string
	watchReplay  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow research progress published to NATS",
	Long:  `Print progress events from every research process publishing to the same NATS server.`,
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchNatsURL, "nats-url", "", "NATS server URL (env NATS_URL)")
	watchCmd.Flags().BoolVar(&watchReplay, "replay", false, "print retained events before following new ones")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	url := watchNatsURL
	if url == "" {
		url = config.Load().App.NatsURL
	}
	if url == "" {
		return errors.New("no NATS server configured; set NATS_URL or pass --nats-url")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sub, err := pktNats.NewSubscriber(url)
	if err != nil {
		return err
	}
	defer sub.Close()

	printer := service.NewProgressPrinter(cmd.OutOrStdout())
	err = sub.Subscribe(ctx, pktNats.AllSubjects, watchReplay, func(ctx context.Context, event events.BaseEvent) error {
		printer.Print(event)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s on %s (Ctrl+C to stop)\n", pktNats.AllSubjects, url)
	<-ctx.Done()
	return nil
}
