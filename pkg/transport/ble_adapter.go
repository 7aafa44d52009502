package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/urmzd/shutterlink/pkg/device"
	"tinygo.org/x/bluetooth"
)

// AdapterDialer dials peripherals through the host Bluetooth adapter.
type AdapterDialer struct {
	adapter *bluetooth.Adapter

	watchOnce sync.Once
	mu        sync.Mutex
	lost      map[string]chan struct{} // by peripheral address
}

// NewAdapterDialer creates a dialer on the system default adapter.
func NewAdapterDialer() *AdapterDialer {
	return &AdapterDialer{
		adapter: bluetooth.DefaultAdapter,
		lost:    make(map[string]chan struct{}),
	}
}

// connectionChanged is the adapter's connect handler. It signals the
// connection to a peripheral that went away.
func (d *AdapterDialer) connectionChanged(dev bluetooth.Device, connected bool) {
	if connected {
		return
	}
	key := dev.Address.String()

	d.mu.Lock()
	ch, ok := d.lost[key]
	delete(d.lost, key)
	d.mu.Unlock()

	if ok {
		close(ch)
	}
}

func (d *AdapterDialer) track(addr bluetooth.Address) chan struct{} {
	ch := make(chan struct{})
	d.mu.Lock()
	d.lost[addr.String()] = ch
	d.mu.Unlock()
	return ch
}

func (d *AdapterDialer) forget(addr bluetooth.Address, ch chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost[addr.String()] == ch {
		delete(d.lost, addr.String())
	}
}

// Dial scans for cfg.DeviceName, connects, and enables notifications on the
// TX characteristic. A peripheral without the RX characteristic still
// connects but cannot accept commands.
func (d *AdapterDialer) Dial(ctx context.Context, cfg BLEConfig, notify func([]byte)) (GATTConn, error) {
	serviceUUID, err := bluetooth.ParseUUID(cfg.ServiceUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: service uuid: %v", device.ErrValidation, err)
	}
	rxUUID, err := bluetooth.ParseUUID(cfg.RXUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: rx uuid: %v", device.ErrValidation, err)
	}
	txUUID, err := bluetooth.ParseUUID(cfg.TXUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: tx uuid: %v", device.ErrValidation, err)
	}

	// The connect handler must be in place before the adapter connects.
	d.watchOnce.Do(func() {
		d.adapter.SetConnectHandler(d.connectionChanged)
	})

	if err := d.adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable bluetooth adapter: %w", err)
	}

	addr, err := d.scan(ctx, cfg)
	if err != nil {
		return nil, err
	}

	lost := d.track(addr)
	dev, err := d.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		d.forget(addr, lost)
		return nil, fmt.Errorf("connect %s: %w", addr.String(), err)
	}

	conn, err := d.subscribe(dev, cfg, serviceUUID, rxUUID, txUUID, notify)
	if err != nil {
		d.forget(addr, lost)
		_ = dev.Disconnect()
		return nil, err
	}
	conn.lost = lost
	conn.disconnect = func() error {
		d.forget(addr, lost)
		return dev.Disconnect()
	}
	return conn, nil
}

// subscribe discovers the UART service on dev and enables notifications on
// its TX characteristic.
func (d *AdapterDialer) subscribe(dev bluetooth.Device, cfg BLEConfig, serviceUUID, rxUUID, txUUID bluetooth.UUID, notify func([]byte)) (*adapterConn, error) {
	services, err := dev.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil || len(services) == 0 {
		if err == nil {
			err = errors.New("not advertised")
		}
		return nil, fmt.Errorf("discover service %s: %w", cfg.ServiceUUID, err)
	}

	chars, err := services[0].DiscoverCharacteristics(nil)
	if err != nil {
		return nil, fmt.Errorf("discover characteristics: %w", err)
	}

	var rx, tx *bluetooth.DeviceCharacteristic
	for i := range chars {
		switch chars[i].UUID() {
		case rxUUID:
			rx = &chars[i]
		case txUUID:
			tx = &chars[i]
		}
	}
	if tx == nil {
		return nil, fmt.Errorf("notify characteristic %s not found", cfg.TXUUID)
	}

	if err := tx.EnableNotifications(notify); err != nil {
		return nil, fmt.Errorf("enable notifications: %w", err)
	}

	conn := &adapterConn{}
	if rx != nil {
		conn.write = rx.WriteWithoutResponse
	}
	return conn, nil
}

// scan returns the address of the first peripheral advertising cfg.DeviceName.
func (d *AdapterDialer) scan(ctx context.Context, cfg BLEConfig) (bluetooth.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ScanTimeout)
	defer cancel()

	found := make(chan bluetooth.Address, 1)
	done := make(chan error, 1)

	go func() {
		done <- d.adapter.Scan(func(a *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.LocalName() != cfg.DeviceName {
				return
			}
			select {
			case found <- result.Address:
			default:
			}
			_ = a.StopScan()
		})
	}()

	select {
	case addr := <-found:
		return addr, nil
	case err := <-done:
		select {
		case addr := <-found:
			return addr, nil
		default:
		}
		if err == nil {
			err = errors.New("scan stopped")
		}
		return bluetooth.Address{}, fmt.Errorf("scan for %q: %w", cfg.DeviceName, err)
	case <-ctx.Done():
		_ = d.adapter.StopScan()
		return bluetooth.Address{}, fmt.Errorf("%w: %q not found: %v", device.ErrUnavailable, cfg.DeviceName, ctx.Err())
	}
}

type adapterConn struct {
	write      func([]byte) (int, error)
	disconnect func() error
	lost       chan struct{}
}

func (c *adapterConn) Write(p []byte) (int, error) {
	if c.write == nil {
		return 0, device.ErrNotWritable
	}
	return c.write(p)
}

func (c *adapterConn) Done() <-chan struct{} {
	return c.lost
}

func (c *adapterConn) Close() error {
	return c.disconnect()
}
