// Package transport provides the two physical links to the shutter tester:
// a USB serial stream link (go.bug.st/serial) and a Bluetooth LE link
// (tinygo.org/x/bluetooth) exposing a UART-style GATT service. Both
// implement device.Transport.
package transport
