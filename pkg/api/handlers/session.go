package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/shutterlink/pkg/api/types"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/link"
	"github.com/urmzd/shutterlink/pkg/session"
)

// Session is the application session the handlers operate on.
type Session interface {
	Connect(ctx context.Context, kind device.TransportKind, port string) error
	Disconnect() error
	Status(ctx context.Context) (session.Status, error)
	ViewMode(ctx context.Context) (device.ViewMode, error)
	SetViewMode(ctx context.Context, view device.ViewMode) (bool, error)
	Orientation(ctx context.Context) (device.Orientation, error)
	SetOrientation(ctx context.Context, o device.Orientation) error
	Latest() session.Latest
	Reset()
	Subscribe() chan session.Event
	Unsubscribe(ch chan session.Event)
}

// writeError maps a session or link error to an HTTP status.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"

	switch {
	case errors.Is(err, device.ErrValidation), errors.Is(err, device.ErrUnknownTransport):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, device.ErrBusy):
		status, code = http.StatusConflict, "busy"
	case errors.Is(err, device.ErrAlreadyConnected):
		status, code = http.StatusConflict, "already_connected"
	case errors.Is(err, device.ErrConnectAborted):
		status, code = http.StatusConflict, "connect_aborted"
	case errors.Is(err, device.ErrNotConnected):
		status, code = http.StatusServiceUnavailable, "not_connected"
	case errors.Is(err, device.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "transport_unavailable"
	case errors.Is(err, device.ErrConnectFailed):
		status, code = http.StatusBadGateway, "connect_failed"
	case errors.Is(err, device.ErrWriteFailed):
		status, code = http.StatusBadGateway, "write_failed"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	}

	c.JSON(status, types.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
	})
}

func linkResponse(s link.Status) types.LinkResponse {
	return types.LinkResponse{
		State:     s.State.String(),
		Transport: string(s.Transport),
		Session:   s.Session,
		Since:     s.Since,
	}
}
