// Package compositor wraps the sway IPC socket behind the two
// operations the daemon consumes: listing outputs and running output
// commands. The interface keeps the rest of the daemon testable with an
// in-memory fake.
package compositor

import (
	"context"
	"fmt"

	"github.com/joshuarubin/go-sway"
)

// Client is the compositor surface the daemon depends on.
type Client interface {
	// Outputs returns the compositor's current output descriptors.
	Outputs(ctx context.Context) ([]sway.Output, error)
	// RunCommands executes output commands in order, stopping at the
	// first failure.
	RunCommands(ctx context.Context, cmds []string) error
}

type swayClient struct {
	conn sway.Client
}

// Connect dials the sway IPC socket (SWAYSOCK must be set).
func Connect(ctx context.Context) (Client, error) {
	conn, err := sway.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sway ipc: %w", err)
	}
	return &swayClient{conn: conn}, nil
}

func (c *swayClient) Outputs(ctx context.Context) ([]sway.Output, error) {
	outputs, err := c.conn.GetOutputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("sway get_outputs: %w", err)
	}
	return outputs, nil
}

func (c *swayClient) RunCommands(ctx context.Context, cmds []string) error {
	for _, cmd := range cmds {
		replies, err := c.conn.RunCommand(ctx, cmd)
		if err != nil {
			return fmt.Errorf("sway command %q: %w", cmd, err)
		}
		for _, r := range replies {
			if !r.Success {
				return fmt.Errorf("sway command %q rejected: %s", cmd, r.Error)
			}
		}
	}
	return nil
}
