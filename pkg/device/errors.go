package device

import "errors"

var (
	// ErrNotConnected indicates the link is not connected
	ErrNotConnected = errors.New("link not connected")

	// ErrAlreadyConnected indicates another transport is already connected
	ErrAlreadyConnected = errors.New("link already connected")

	// ErrBusy indicates a connection attempt is already in progress
	ErrBusy = errors.New("connection attempt in progress")

	// ErrConnectFailed indicates the transport could not be opened
	ErrConnectFailed = errors.New("transport connect failed")

	// ErrConnectAborted indicates a disconnect was requested while connecting
	ErrConnectAborted = errors.New("connect aborted")

	// ErrWriteFailed indicates a command could not be written to the device
	ErrWriteFailed = errors.New("command write failed")

	// ErrNotWritable indicates the transport has no writable channel
	ErrNotWritable = errors.New("transport not writable")

	// ErrUnavailable indicates the transport is disabled or not present
	ErrUnavailable = errors.New("transport unavailable")

	// ErrUnknownTransport indicates no transport is registered for a kind
	ErrUnknownTransport = errors.New("unknown transport")

	// ErrValidation indicates a request value failed validation
	ErrValidation = errors.New("validation error")
)
