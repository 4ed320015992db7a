package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swaydisplayd/internal/dbus"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print a line whenever the monitor layout changes",
	Long: `Subscribe to the daemon's MonitorsChanged signal and print a
timestamped line for every emission until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	events, err := client.WatchChanges(ctx)
	if err != nil {
		return err
	}

	logger.Debug("watching for monitor changes")
	for range events {
		fmt.Printf("%s monitors changed\n", time.Now().Format(time.RFC3339))
	}
	return nil
}
