package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client is the consumer side of the DisplayConfig interface, used by
// swaydisplayctl.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus and binds the display-config
// object.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(DBusBusName, DBusPath),
	}, nil
}

// CurrentState is the decoded GetCurrentState reply.
type CurrentState struct {
	Serial          uint32
	Monitors        []Monitor
	LogicalMonitors []LogicalMonitor
	Properties      map[string]dbus.Variant
}

// CurrentState fetches the daemon's display snapshot.
func (c *Client) CurrentState(ctx context.Context) (*CurrentState, error) {
	call := c.obj.CallWithContext(ctx, DBusInterface+".GetCurrentState", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("GetCurrentState: %w", call.Err)
	}

	var cs CurrentState
	if err := call.Store(&cs.Serial, &cs.Monitors, &cs.LogicalMonitors, &cs.Properties); err != nil {
		return nil, fmt.Errorf("failed to decode GetCurrentState reply: %w", err)
	}
	return &cs, nil
}

// Apply submits an ApplyMonitorsConfig request.
func (c *Client) Apply(ctx context.Context, serial uint32, method uint32, monitors []ApplyLogicalMonitor, properties map[string]dbus.Variant) error {
	if properties == nil {
		properties = map[string]dbus.Variant{}
	}
	call := c.obj.CallWithContext(ctx, DBusInterface+".ApplyMonitorsConfig", 0,
		serial, method, monitors, properties)
	if call.Err != nil {
		return fmt.Errorf("ApplyMonitorsConfig: %w", call.Err)
	}
	return nil
}

// ApplyAllowed reads the ApplyMonitorsConfigAllowed property.
func (c *Client) ApplyAllowed() (bool, error) {
	v, err := c.obj.GetProperty(DBusInterface + ".ApplyMonitorsConfigAllowed")
	if err != nil {
		return false, fmt.Errorf("failed to read property: %w", err)
	}
	allowed, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected property type %T", v.Value())
	}
	return allowed, nil
}

// WatchChanges delivers one element per MonitorsChanged emission until
// ctx is cancelled.
func (c *Client) WatchChanges(ctx context.Context) (<-chan struct{}, error) {
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember("MonitorsChanged"),
	); err != nil {
		return nil, fmt.Errorf("failed to add signal match: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer c.conn.RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if sig.Name == DBusInterface+".MonitorsChanged" {
					select {
					case out <- struct{}{}:
					default:
					}
				}
			}
		}
	}()
	return out, nil
}
