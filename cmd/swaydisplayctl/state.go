package main

import (
	"context"
	"fmt"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swaydisplayd/internal/dbus"
)

var stateOpts struct {
	modes bool
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the current monitor layout",
	Long: `Fetch and print the daemon's current display state: the config
serial, every connected monitor, and the active logical monitor layout.`,
	RunE: runState,
}

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().BoolVar(&stateOpts.modes, "modes", false,
		"List every supported mode per monitor, not just the current one")
}

func runState(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	cs, err := client.CurrentState(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("serial: %d\n", cs.Serial)
	printProperties(cs.Properties)

	fmt.Printf("\nmonitors (%d):\n", len(cs.Monitors))
	for _, m := range cs.Monitors {
		fmt.Printf("  %s  %s %s %s\n", m.Descriptor.Connector,
			m.Descriptor.Vendor, m.Descriptor.Product, m.Descriptor.Serial)
		for _, mode := range m.Modes {
			current := variantBool(mode.Properties["is-current"])
			if !stateOpts.modes && !current {
				continue
			}
			marker := " "
			if current {
				marker = "*"
			}
			fmt.Printf("    %s %s\n", marker, mode.ID)
		}
	}

	fmt.Printf("\nlogical monitors (%d):\n", len(cs.LogicalMonitors))
	for _, l := range cs.LogicalMonitors {
		for _, d := range l.Monitors {
			fmt.Printf("  %s  position %d,%d scale %g transform %d\n",
				d.Connector, l.X, l.Y, l.Scale, l.Transform)
		}
	}

	return nil
}

func printProperties(props map[string]godbus.Variant) {
	for _, key := range []string{"layout-mode", "supports-changing-layout-mode", "global-scale-required", "legacy-ui-scaling-factor"} {
		if v, ok := props[key]; ok {
			fmt.Printf("%s: %v\n", key, v.Value())
		}
	}
}

func variantBool(v godbus.Variant) bool {
	b, ok := v.Value().(bool)
	return ok && b
}
