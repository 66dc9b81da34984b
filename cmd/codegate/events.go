package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/m3rciful/codegate/app/events"
)

var (
	eventsNATSURL string
	eventsSubject string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect audit events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print audit events as JSON lines until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		url := eventsNATSURL
		if url == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			url = cfg.Events.NATSURL
		}
		if url == "" {
			return fmt.Errorf("events.nats_url is not configured; pass --nats")
		}

		sub, err := events.NewSubscriber(url)
		if err != nil {
			return err
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(eventsSubject)
		if err != nil {
			return err
		}
		defer cancel()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return printEvents(ctx.Done(), ch, cmd.OutOrStdout())
	},
}

func init() {
	eventsTailCmd.Flags().StringVar(&eventsNATSURL, "nats", "", "NATS url; defaults to events.nats_url from the config")
	eventsTailCmd.Flags().StringVar(&eventsSubject, "subject", events.TopicAll, "subject to subscribe to")
	eventsCmd.AddCommand(eventsTailCmd)
}

func printEvents(done <-chan struct{}, ch <-chan events.Event, w io.Writer) error {
	enc := json.NewEncoder(w)
	for {
		select {
		case <-done:
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
	}
}
