// Package interactive provides the interactive command line of
// shutter-console.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/protocol"
	"github.com/urmzd/shutterlink/pkg/session"
	"github.com/urmzd/shutterlink/pkg/transport"
)

// Session is the part of session.Session the console drives.
type Session interface {
	Connect(ctx context.Context, kind device.TransportKind, port string) error
	Disconnect() error
	Status(ctx context.Context) (session.Status, error)
	SetViewMode(ctx context.Context, view device.ViewMode) (bool, error)
	Orientation(ctx context.Context) (device.Orientation, error)
	SetOrientation(ctx context.Context, o device.Orientation) error
	Latest() session.Latest
	Reset()
	Subscribe() chan session.Event
	Unsubscribe(ch chan session.Event)
}

// Console handles the interactive command loop.
type Console struct {
	session   Session
	listPorts func() ([]transport.PortInfo, error)
	rl        *readline.Instance
	out       io.Writer
}

// New creates a console over s.
func New(s Session, listPorts func() ([]transport.PortInfo, error)) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "shutter> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(s, listPorts, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(s Session, listPorts func() ([]transport.PortInfo, error), out io.Writer) *Console {
	if listPorts == nil {
		listPorts = transport.ListPorts
	}
	return &Console{session: s, listPorts: listPorts, out: out}
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("connect",
		readline.PcItem("usb"),
		readline.PcItem("bluetooth"),
	),
	readline.PcItem("disconnect"),
	readline.PcItem("mode",
		readline.PcItem(string(device.ViewSinglePoint)),
		readline.PcItem(string(device.ViewThreePoint)),
		readline.PcItem(string(device.ViewShutterTiming)),
		readline.PcItem(string(device.ViewShotByShot)),
	),
	readline.PcItem("orientation",
		readline.PcItem(string(device.OrientationAuto)),
		readline.PcItem(string(device.OrientationVertical)),
		readline.PcItem(string(device.OrientationHorizontal)),
	),
	readline.PcItem("ports"),
	readline.PcItem("status"),
	readline.PcItem("latest"),
	readline.PcItem("reset"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

// Stdout returns a writer that coordinates with the prompt. Use it for log
// output.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run reads commands until exit, EOF or ctx is done. Session events are
// printed above the prompt while it runs.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	events := c.session.Subscribe()
	defer c.session.Unsubscribe(events)
	go c.watch(ctx, events)

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if !c.execute(ctx, line) {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// execute runs one command line. It returns false when the console should
// exit.
func (c *Console) execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "connect", "c":
		c.cmdConnect(ctx, args)
	case "disconnect", "d":
		c.cmdDisconnect()
	case "mode", "m":
		c.cmdMode(ctx, args)
	case "orientation", "o":
		c.cmdOrientation(ctx, args)
	case "ports", "p":
		c.cmdPorts()
	case "status", "s":
		c.cmdStatus(ctx)
	case "latest", "l":
		c.cmdLatest()
	case "reset":
		c.session.Reset()
		fmt.Fprintln(c.out, "Measurements cleared")
	case "exit", "quit", "q":
		return false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Shutter Tester Commands:
  Link:
    connect usb [port]     - Connect over USB serial (default: configured port)
    connect bluetooth      - Connect over Bluetooth LE
    disconnect             - Close the link
    ports                  - List serial ports
    status                 - Show link state and settings

  Measuring:
    mode <view>            - single_point, three_point, shutter_timing or shot_by_shot
    orientation [value]    - Show or set auto, vertical or horizontal
    latest                 - Show the latest measurements
    reset                  - Clear the latest measurements

  General:
    help                   - Show this help
    exit                   - Exit the console`)
}

func (c *Console) cmdConnect(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: connect usb [port] | connect bluetooth")
		return
	}
	kind, err := device.ParseTransportKind(strings.ToLower(args[0]))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	port := ""
	if len(args) > 1 {
		port = args[1]
	}

	if err := c.session.Connect(ctx, kind, port); err != nil {
		fmt.Fprintf(c.out, "Connect failed: %v\n", err)
		return
	}
	c.cmdStatus(ctx)
}

func (c *Console) cmdDisconnect() {
	if err := c.session.Disconnect(); err != nil {
		fmt.Fprintf(c.out, "Disconnect failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Disconnected")
}

func (c *Console) cmdMode(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: mode <single_point|three_point|shutter_timing|shot_by_shot>")
		return
	}
	view, err := device.ParseViewMode(strings.ToLower(args[0]))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	sent, err := c.session.SetViewMode(ctx, view)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if sent {
		fmt.Fprintf(c.out, "View mode %s (device %s)\n", view, view.DeviceMode())
	} else {
		fmt.Fprintf(c.out, "View mode %s saved (not connected)\n", view)
	}
}

func (c *Console) cmdOrientation(ctx context.Context, args []string) {
	if len(args) == 0 {
		o, err := c.session.Orientation(ctx)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "Orientation: %s\n", o)
		return
	}

	o, err := device.ParseOrientation(strings.ToLower(args[0]))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if err := c.session.SetOrientation(ctx, o); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Orientation: %s\n", o)
}

func (c *Console) cmdPorts() {
	ports, err := c.listPorts()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(ports) == 0 {
		fmt.Fprintln(c.out, "No serial ports found")
		return
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Fprintf(c.out, "  %s  USB %s:%s %s\n", p.Name, p.VID, p.PID, p.Product)
		} else {
			fmt.Fprintf(c.out, "  %s\n", p.Name)
		}
	}
}

func (c *Console) cmdStatus(ctx context.Context) {
	st, err := c.session.Status(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Link:        %s", st.Link.State)
	if st.Link.Transport != "" {
		fmt.Fprintf(c.out, " (%s, session %s)", st.Link.Transport, st.Link.Session)
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "View mode:   %s (device %s)\n", st.ViewMode, st.ViewMode.DeviceMode())
	fmt.Fprintf(c.out, "Orientation: %s\n", st.Orientation)
}

func (c *Console) cmdLatest() {
	latest := c.session.Latest()
	if latest.UpdatedAt.IsZero() {
		fmt.Fprintln(c.out, "No measurements yet")
		return
	}

	if len(latest.Metadata) > 0 {
		fmt.Fprintf(c.out, "Device:      %s\n", formatMetadata(latest.Metadata))
	}
	if latest.SinglePoint != nil {
		fmt.Fprintf(c.out, "Single:      %s\n", formatSinglePoint(latest.SinglePoint))
	}
	if latest.ThreePoint != nil {
		fmt.Fprintf(c.out, "Three point: %s\n", formatThreePoint(latest.ThreePoint))
	}
	fmt.Fprintf(c.out, "Updated:     %s\n", latest.UpdatedAt.Format("15:04:05"))
}

// watch prints session events until ctx is done or events is closed.
func (c *Console) watch(ctx context.Context, events chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if line := formatEvent(evt); line != "" {
				fmt.Fprintln(c.out, line)
			}
		}
	}
}

func formatEvent(evt session.Event) string {
	switch data := evt.Data.(type) {
	case session.StateChange:
		if data.Transport != "" {
			return fmt.Sprintf("[link] %s (%s)", data.To, data.Transport)
		}
		return fmt.Sprintf("[link] %s", data.To)
	case *protocol.SinglePoint:
		return "[single] " + formatSinglePoint(data)
	case *protocol.ThreePoint:
		return "[three point] " + formatThreePoint(data)
	case map[string]any:
		return "[device] " + formatMetadata(data)
	case session.OrientationChange:
		if data.Inferred {
			return fmt.Sprintf("[orientation] %s (inferred)", data.Orientation)
		}
		return fmt.Sprintf("[orientation] %s", data.Orientation)
	case session.ModeChange:
		return ""
	}
	if evt.Type == session.EventReset {
		return "[reset]"
	}
	return ""
}

func formatSinglePoint(m *protocol.SinglePoint) string {
	s := fmt.Sprintf("open=%g close=%g", m.Open, m.Close)
	if m.Speed != "" {
		s += " speed=" + m.Speed
	}
	return s
}

func formatThreePoint(m *protocol.ThreePoint) string {
	return fmt.Sprintf("s1 %g/%g  s2 %g/%g  s3 %g/%g",
		m.Sensor1.Open, m.Sensor1.Close,
		m.Sensor2.Open, m.Sensor2.Close,
		m.Sensor3.Open, m.Sensor3.Close)
}

func formatMetadata(fields map[string]any) string {
	parts := make([]string, 0, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
