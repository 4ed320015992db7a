package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swaydisplayd/internal/dbus"
	"github.com/jmylchreest/swaydisplayd/internal/display"
)

var applyOpts struct {
	outputs    []string
	verify     bool
	persistent bool
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a monitor layout",
	Long: `Build an ApplyMonitorsConfig request from --output flags and submit
it against the daemon's current serial.

Each --output takes CONNECTOR:MODE:X,Y with optional :TRANSFORM and
:SCALE suffixes, e.g.

  swaydisplayctl apply --output DP-1:3840x2160@60Hz:0,0 \
      --output HDMI-A-1:1920x1080@60Hz:3840,0:90:1.25

Connectors not named in any --output flag are disabled. By default the
layout is applied immediately; --persistent also restarts kanshi so the
layout survives reconnects, --verify only validates.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringArrayVar(&applyOpts.outputs, "output", nil,
		"Desired output placement CONNECTOR:MODE:X,Y[:TRANSFORM[:SCALE]] (repeatable)")
	applyCmd.Flags().BoolVar(&applyOpts.verify, "verify", false,
		"Validate the layout without applying it")
	applyCmd.Flags().BoolVar(&applyOpts.persistent, "persistent", false,
		"Apply and restart kanshi so the layout persists")
}

func runApply(cmd *cobra.Command, args []string) error {
	if len(applyOpts.outputs) == 0 {
		return fmt.Errorf("at least one --output is required")
	}
	if applyOpts.verify && applyOpts.persistent {
		return fmt.Errorf("--verify and --persistent are mutually exclusive")
	}

	monitors := make([]dbus.ApplyLogicalMonitor, 0, len(applyOpts.outputs))
	for _, spec := range applyOpts.outputs {
		lm, err := parseOutputSpec(spec)
		if err != nil {
			return err
		}
		monitors = append(monitors, lm)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	cs, err := client.CurrentState(ctx)
	if err != nil {
		return err
	}
	logger.Debug("applying layout", "serial", cs.Serial, "outputs", len(monitors))

	method := uint32(1)
	switch {
	case applyOpts.verify:
		method = 0
	case applyOpts.persistent:
		method = 2
	}

	if err := client.Apply(ctx, cs.Serial, method, monitors, nil); err != nil {
		return err
	}

	if applyOpts.verify {
		fmt.Println("layout is valid")
	} else {
		fmt.Println("layout applied")
	}
	return nil
}

// parseOutputSpec decodes one CONNECTOR:MODE:X,Y[:TRANSFORM[:SCALE]]
// flag value.
func parseOutputSpec(spec string) (dbus.ApplyLogicalMonitor, error) {
	var lm dbus.ApplyLogicalMonitor

	parts := strings.Split(spec, ":")
	if len(parts) < 3 || len(parts) > 5 {
		return lm, fmt.Errorf("invalid --output %q: want CONNECTOR:MODE:X,Y[:TRANSFORM[:SCALE]]", spec)
	}

	connector, mode, pos := parts[0], parts[1], parts[2]
	if connector == "" || mode == "" {
		return lm, fmt.Errorf("invalid --output %q: empty connector or mode", spec)
	}

	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return lm, fmt.Errorf("invalid --output %q: position must be X,Y", spec)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return lm, fmt.Errorf("invalid --output %q: bad x coordinate: %w", spec, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return lm, fmt.Errorf("invalid --output %q: bad y coordinate: %w", spec, err)
	}

	transform := uint32(0)
	if len(parts) >= 4 && parts[3] != "" {
		transform, err = parseTransform(parts[3])
		if err != nil {
			return lm, fmt.Errorf("invalid --output %q: %w", spec, err)
		}
	}

	scale := 1.0
	if len(parts) == 5 {
		scale, err = strconv.ParseFloat(parts[4], 64)
		if err != nil {
			return lm, fmt.Errorf("invalid --output %q: bad scale: %w", spec, err)
		}
	}

	lm = dbus.ApplyLogicalMonitor{
		X:         int32(x),
		Y:         int32(y),
		Scale:     scale,
		Transform: transform,
		Monitors: []dbus.ApplyMonitor{
			{Connector: connector, Mode: mode, Properties: map[string]godbus.Variant{}},
		},
	}
	return lm, nil
}

// parseTransform maps a transform name (normal, 90, flipped-270, ...)
// to its protocol code.
func parseTransform(name string) (uint32, error) {
	for code := uint32(0); code < 8; code++ {
		t, err := display.TransformFromCode(code)
		if err != nil {
			break
		}
		if t.CompositorName() == name {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown transform %q", name)
}
